// Package s3 provides the object-storage backend client for the lake
// bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lakeforge/lakeforge/internal/platform/awsutil"
	"github.com/lakeforge/lakeforge/internal/policy"
	"github.com/lakeforge/lakeforge/internal/provisioning"
)

// Client wraps the S3 API as a provisioning.StorageBackend.
type Client struct {
	s3     *s3.Client
	region string
}

// Options configures client construction.
type Options struct {
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible stores.
	Endpoint string

	// AccessKey/SecretKey switch to static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey string
	SecretKey string
}

// NewClient creates an S3 client from the default credential chain, or
// from static credentials when provided.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &Client{s3: client, region: opts.Region}, nil
}

// CreateBucket creates the bucket. An already-owned bucket is a no-op;
// a globally-taken name surfaces as a ConflictError, never a silent
// re-suffix.
func (c *Client) CreateBucket(ctx context.Context, name, region string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit LocationConstraint.
	if region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}

	return awsutil.Call(ctx, "create bucket", func() error {
		_, err := c.s3.CreateBucket(ctx, input)
		if err == nil {
			return nil
		}
		if awsutil.IsAlreadyExists(err) {
			if isOwnedByCaller(err) {
				return nil
			}
			return &provisioning.ConflictError{Resource: "bucket", Name: name, Err: err}
		}
		return err
	})
}

// BucketExists checks whether the bucket exists and is accessible.
func (c *Client) BucketExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := awsutil.Call(ctx, "head bucket", func() error {
		_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				exists = false
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// GetVersioning reports whether versioning is enabled on the bucket.
func (c *Client) GetVersioning(ctx context.Context, bucket string) (bool, error) {
	var enabled bool
	err := awsutil.Call(ctx, "get bucket versioning", func() error {
		out, err := c.s3.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(bucket)})
		if err != nil {
			return err
		}
		enabled = out.Status == types.BucketVersioningStatusEnabled
		return nil
	})
	return enabled, err
}

// EnableVersioning turns on bucket versioning.
func (c *Client) EnableVersioning(ctx context.Context, bucket string) error {
	return awsutil.Call(ctx, "put bucket versioning", func() error {
		_, err := c.s3.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
			Bucket: aws.String(bucket),
			VersioningConfiguration: &types.VersioningConfiguration{
				Status: types.BucketVersioningStatusEnabled,
			},
		})
		return err
	})
}

// GetEncryption returns the default encryption algorithm, or "" when
// the bucket has no default encryption.
func (c *Client) GetEncryption(ctx context.Context, bucket string) (string, error) {
	var algorithm string
	err := awsutil.Call(ctx, "get bucket encryption", func() error {
		out, err := c.s3.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(bucket)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		if cfg := out.ServerSideEncryptionConfiguration; cfg != nil && len(cfg.Rules) > 0 {
			if def := cfg.Rules[0].ApplyServerSideEncryptionByDefault; def != nil {
				algorithm = string(def.SSEAlgorithm)
			}
		}
		return nil
	})
	return algorithm, err
}

// EnableEncryption configures AES256 server-side encryption by default.
func (c *Client) EnableEncryption(ctx context.Context, bucket string) error {
	return awsutil.Call(ctx, "put bucket encryption", func() error {
		_, err := c.s3.PutBucketEncryption(ctx, &s3.PutBucketEncryptionInput{
			Bucket: aws.String(bucket),
			ServerSideEncryptionConfiguration: &types.ServerSideEncryptionConfiguration{
				Rules: []types.ServerSideEncryptionRule{{
					ApplyServerSideEncryptionByDefault: &types.ServerSideEncryptionByDefault{
						SSEAlgorithm: types.ServerSideEncryptionAes256,
					},
				}},
			},
		})
		return err
	})
}

// GetPublicAccessBlock reports whether all four public access vectors
// are blocked.
func (c *Client) GetPublicAccessBlock(ctx context.Context, bucket string) (bool, error) {
	var blocked bool
	err := awsutil.Call(ctx, "get public access block", func() error {
		out, err := c.s3.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(bucket)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		cfg := out.PublicAccessBlockConfiguration
		blocked = cfg != nil &&
			aws.ToBool(cfg.BlockPublicAcls) &&
			aws.ToBool(cfg.IgnorePublicAcls) &&
			aws.ToBool(cfg.BlockPublicPolicy) &&
			aws.ToBool(cfg.RestrictPublicBuckets)
		return nil
	})
	return blocked, err
}

// BlockPublicAccess blocks all public access to the bucket.
func (c *Client) BlockPublicAccess(ctx context.Context, bucket string) error {
	return awsutil.Call(ctx, "put public access block", func() error {
		_, err := c.s3.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
			Bucket: aws.String(bucket),
			PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
				BlockPublicAcls:       aws.Bool(true),
				IgnorePublicAcls:      aws.Bool(true),
				BlockPublicPolicy:     aws.Bool(true),
				RestrictPublicBuckets: aws.Bool(true),
			},
		})
		return err
	})
}

// GetLifecycle returns the current lifecycle document, or nil when the
// bucket has none configured.
func (c *Client) GetLifecycle(ctx context.Context, bucket string) (*policy.LifecycleDocument, error) {
	var doc *policy.LifecycleDocument
	err := awsutil.Call(ctx, "get bucket lifecycle", func() error {
		out, err := c.s3.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{
			Bucket: aws.String(bucket),
		})
		if err != nil {
			if awsutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		doc = lifecycleFromRules(out.Rules)
		return nil
	})
	return doc, err
}

// PutLifecycle replaces the bucket lifecycle configuration.
func (c *Client) PutLifecycle(ctx context.Context, bucket string, doc policy.LifecycleDocument) error {
	return awsutil.Call(ctx, "put bucket lifecycle", func() error {
		_, err := c.s3.PutBucketLifecycleConfiguration(ctx, &s3.PutBucketLifecycleConfigurationInput{
			Bucket: aws.String(bucket),
			LifecycleConfiguration: &types.BucketLifecycleConfiguration{
				Rules: lifecycleToRules(doc),
			},
		})
		return err
	})
}

// GetTags returns the bucket tag set, empty when untagged.
func (c *Client) GetTags(ctx context.Context, bucket string) (map[string]string, error) {
	tags := map[string]string{}
	err := awsutil.Call(ctx, "get bucket tagging", func() error {
		out, err := c.s3.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(bucket)})
		if err != nil {
			if awsutil.IsNotFound(err) {
				return nil
			}
			return err
		}
		for _, tag := range out.TagSet {
			tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
		return nil
	})
	return tags, err
}

// PutTags replaces the bucket tag set.
func (c *Client) PutTags(ctx context.Context, bucket string, tags map[string]string) error {
	tagSet := make([]types.Tag, 0, len(tags))
	for k, v := range tags {
		tagSet = append(tagSet, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return awsutil.Call(ctx, "put bucket tagging", func() error {
		_, err := c.s3.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
			Bucket:  aws.String(bucket),
			Tagging: &types.Tagging{TagSet: tagSet},
		})
		return err
	})
}

// ObjectExists checks whether the object key is present.
func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	var exists bool
	err := awsutil.Call(ctx, "head object", func() error {
		_, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if awsutil.IsNotFound(err) {
				exists = false
				return nil
			}
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// PutObject writes an object.
func (c *Client) PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	return awsutil.Call(ctx, "put object", func() error {
		_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(body),
			ContentLength: aws.Int64(int64(len(body))),
			ContentType:   aws.String(contentType),
		})
		return err
	})
}

// ListObjects returns all keys under prefix.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.s3, input)
	for paginator.HasMorePages() {
		err := awsutil.Call(ctx, "list objects", func() error {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, obj := range page.Contents {
				keys = append(keys, aws.ToString(obj.Key))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// EmptyBucket deletes every object and object version in the bucket.
// Called only from explicitly-authorized teardown.
func (c *Client) EmptyBucket(ctx context.Context, bucket string) error {
	paginator := s3.NewListObjectVersionsPaginator(c.s3, &s3.ListObjectVersionsInput{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		var batch []types.ObjectIdentifier
		err := awsutil.Call(ctx, "list object versions", func() error {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, v := range page.Versions {
				batch = append(batch, types.ObjectIdentifier{Key: v.Key, VersionId: v.VersionId})
			}
			for _, m := range page.DeleteMarkers {
				batch = append(batch, types.ObjectIdentifier{Key: m.Key, VersionId: m.VersionId})
			}
			return nil
		})
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			continue
		}
		err = awsutil.Call(ctx, "delete objects", func() error {
			_, err := c.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(bucket),
				Delete: &types.Delete{Objects: batch, Quiet: aws.Bool(true)},
			})
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteBucket deletes the bucket. The bucket must be empty.
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	return awsutil.Call(ctx, "delete bucket", func() error {
		_, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
		if err != nil && awsutil.IsNotFound(err) {
			return nil
		}
		return err
	})
}
