package s3

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/lakeforge/lakeforge/internal/policy"
)

// isOwnedByCaller distinguishes "you already own this bucket" from a
// genuine global name collision.
func isOwnedByCaller(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
	}
	return false
}

// lifecycleToRules converts the engine lifecycle document to wire form.
func lifecycleToRules(doc policy.LifecycleDocument) []types.LifecycleRule {
	rules := make([]types.LifecycleRule, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		rule := types.LifecycleRule{
			ID:     aws.String(r.ID),
			Status: types.ExpirationStatusEnabled,
			Filter: &types.LifecycleRuleFilter{Prefix: aws.String(r.Prefix)},
		}
		if r.ExpirationDays > 0 {
			rule.Expiration = &types.LifecycleExpiration{Days: aws.Int32(r.ExpirationDays)}
		}
		if r.NoncurrentExpirationDays > 0 {
			rule.NoncurrentVersionExpiration = &types.NoncurrentVersionExpiration{
				NoncurrentDays: aws.Int32(r.NoncurrentExpirationDays),
			}
		}
		if r.MultipartAbortDays > 0 {
			rule.AbortIncompleteMultipartUpload = &types.AbortIncompleteMultipartUpload{
				DaysAfterInitiation: aws.Int32(r.MultipartAbortDays),
			}
		}
		rules = append(rules, rule)
	}
	return rules
}

// lifecycleFromRules converts observed wire rules back to the engine
// document. Only enabled rules with fields the engine manages are kept;
// the diff compares these field by field.
func lifecycleFromRules(rules []types.LifecycleRule) *policy.LifecycleDocument {
	doc := &policy.LifecycleDocument{}
	for _, rule := range rules {
		if rule.Status != types.ExpirationStatusEnabled {
			continue
		}
		r := policy.LifecycleRule{ID: aws.ToString(rule.ID)}
		if rule.Filter != nil {
			r.Prefix = aws.ToString(rule.Filter.Prefix)
		}
		if rule.Expiration != nil {
			r.ExpirationDays = aws.ToInt32(rule.Expiration.Days)
		}
		if rule.NoncurrentVersionExpiration != nil {
			r.NoncurrentExpirationDays = aws.ToInt32(rule.NoncurrentVersionExpiration.NoncurrentDays)
		}
		if rule.AbortIncompleteMultipartUpload != nil {
			r.MultipartAbortDays = aws.ToInt32(rule.AbortIncompleteMultipartUpload.DaysAfterInitiation)
		}
		doc.Rules = append(doc.Rules, r)
	}
	return doc
}
