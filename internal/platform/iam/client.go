// Package iam provides the service-role backend client for the
// crawler role.
package iam

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/lakeforge/lakeforge/internal/platform/awsutil"
)

// Client wraps the IAM API as a provisioning.RoleBackend.
type Client struct {
	iam *iam.Client
}

// NewClient creates an IAM client from the default credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Client{iam: iam.NewFromConfig(cfg)}, nil
}

// NewFromAPI wraps an already-constructed IAM client.
func NewFromAPI(api *iam.Client) *Client {
	return &Client{iam: api}
}

// GetRoleARN returns the role ARN, or "" when the role is absent.
func (c *Client) GetRoleARN(ctx context.Context, name string) (string, error) {
	var arn string
	err := awsutil.Call(ctx, "get role", func() error {
		out, err := c.iam.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		arn = aws.ToString(out.Role.Arn)
		return nil
	})
	return arn, err
}

// CreateRole creates the role with the given trust policy and returns
// its ARN. When the role already exists its current ARN is returned.
func (c *Client) CreateRole(ctx context.Context, name, trustPolicy string, tags map[string]string) (string, error) {
	roleTags := make([]types.Tag, 0, len(tags))
	for k, v := range tags {
		roleTags = append(roleTags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}

	var arn string
	err := awsutil.Call(ctx, "create role", func() error {
		out, err := c.iam.CreateRole(ctx, &iam.CreateRoleInput{
			RoleName:                 aws.String(name),
			AssumeRolePolicyDocument: aws.String(trustPolicy),
			Tags:                     roleTags,
		})
		if err != nil {
			if awsutil.IsAlreadyExists(err) {
				return nil
			}
			return err
		}
		arn = aws.ToString(out.Role.Arn)
		return nil
	})
	if err != nil {
		return "", err
	}
	if arn == "" {
		return c.GetRoleARN(ctx, name)
	}
	return arn, nil
}

// PutRolePolicy attaches an inline policy document to the role.
// Reissuing the same policy name replaces the document, which keeps the
// call idempotent.
func (c *Client) PutRolePolicy(ctx context.Context, roleName, policyName, document string) error {
	return awsutil.Call(ctx, "put role policy", func() error {
		_, err := c.iam.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
			RoleName:       aws.String(roleName),
			PolicyName:     aws.String(policyName),
			PolicyDocument: aws.String(document),
		})
		return err
	})
}

// DeleteRole removes the role after detaching its inline policies.
// Absence is a no-op.
func (c *Client) DeleteRole(ctx context.Context, name string) error {
	var policyNames []string
	err := awsutil.Call(ctx, "list role policies", func() error {
		out, err := c.iam.ListRolePolicies(ctx, &iam.ListRolePoliciesInput{RoleName: aws.String(name)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		policyNames = out.PolicyNames
		return nil
	})
	if err != nil {
		return err
	}

	for _, policyName := range policyNames {
		err := awsutil.Call(ctx, "delete role policy", func() error {
			_, err := c.iam.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
				RoleName:   aws.String(name),
				PolicyName: aws.String(policyName),
			})
			return err
		})
		if err != nil {
			return err
		}
	}

	return awsutil.Call(ctx, "delete role", func() error {
		_, err := c.iam.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(name)})
		if err != nil && awsutil.IsNotFound(err) {
			return nil
		}
		return err
	})
}
