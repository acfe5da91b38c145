// Package provisioningtest provides in-memory fake backends for
// exercising the provisioning engine without a cloud account.
package provisioningtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/lakeforge/lakeforge/internal/policy"
	"github.com/lakeforge/lakeforge/internal/provisioning"
)

// FakeBucket is the in-memory state of one bucket.
type FakeBucket struct {
	Region              string
	Versioning          bool
	Encryption          string
	PublicAccessBlocked bool
	Lifecycle           *policy.LifecycleDocument
	Tags                map[string]string
	Objects             map[string][]byte
}

// FakeStorage implements provisioning.StorageBackend in memory. Every
// mutating call is idempotent, matching the real backend contract.
type FakeStorage struct {
	mu      sync.Mutex
	Buckets map[string]*FakeBucket
	// Fail maps an operation name to an error injected on every call.
	Fail map[string]error
	// TakenNames simulates globally-taken bucket names owned by others.
	TakenNames map[string]bool
}

// NewFakeStorage creates an empty fake object store.
func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		Buckets:    map[string]*FakeBucket{},
		Fail:       map[string]error{},
		TakenNames: map[string]bool{},
	}
}

func (f *FakeStorage) failure(op string) error {
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

func (f *FakeStorage) bucket(name string) (*FakeBucket, error) {
	b, ok := f.Buckets[name]
	if !ok {
		return nil, fmt.Errorf("bucket %s not found", name)
	}
	return b, nil
}

func (f *FakeStorage) CreateBucket(_ context.Context, name, region string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("CreateBucket"); err != nil {
		return err
	}
	if f.TakenNames[name] {
		return &provisioning.ConflictError{Resource: "bucket", Name: name, Err: fmt.Errorf("bucket name taken")}
	}
	if _, ok := f.Buckets[name]; ok {
		return nil
	}
	f.Buckets[name] = &FakeBucket{
		Region:  region,
		Tags:    map[string]string{},
		Objects: map[string][]byte{},
	}
	return nil
}

func (f *FakeStorage) BucketExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("BucketExists"); err != nil {
		return false, err
	}
	_, ok := f.Buckets[name]
	return ok, nil
}

func (f *FakeStorage) GetVersioning(_ context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetVersioning"); err != nil {
		return false, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return false, err
	}
	return b.Versioning, nil
}

func (f *FakeStorage) EnableVersioning(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("EnableVersioning"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Versioning = true
	return nil
}

func (f *FakeStorage) GetEncryption(_ context.Context, bucket string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetEncryption"); err != nil {
		return "", err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return "", err
	}
	return b.Encryption, nil
}

func (f *FakeStorage) EnableEncryption(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("EnableEncryption"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Encryption = "AES256"
	return nil
}

func (f *FakeStorage) GetPublicAccessBlock(_ context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetPublicAccessBlock"); err != nil {
		return false, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return false, err
	}
	return b.PublicAccessBlocked, nil
}

func (f *FakeStorage) BlockPublicAccess(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("BlockPublicAccess"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.PublicAccessBlocked = true
	return nil
}

func (f *FakeStorage) GetLifecycle(_ context.Context, bucket string) (*policy.LifecycleDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetLifecycle"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.Lifecycle, nil
}

func (f *FakeStorage) PutLifecycle(_ context.Context, bucket string, doc policy.LifecycleDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("PutLifecycle"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Lifecycle = &doc
	return nil
}

func (f *FakeStorage) GetTags(_ context.Context, bucket string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetTags"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	tags := make(map[string]string, len(b.Tags))
	for k, v := range b.Tags {
		tags[k] = v
	}
	return tags, nil
}

func (f *FakeStorage) PutTags(_ context.Context, bucket string, tags map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("PutTags"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Tags = tags
	return nil
}

func (f *FakeStorage) ObjectExists(_ context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("ObjectExists"); err != nil {
		return false, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return false, err
	}
	_, ok := b.Objects[key]
	return ok, nil
}

func (f *FakeStorage) PutObject(_ context.Context, bucket, key string, body []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("PutObject"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Objects[key] = body
	return nil
}

func (f *FakeStorage) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("ListObjects"); err != nil {
		return nil, err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return nil, err
	}
	var keys []string
	for k := range b.Objects {
		if prefix == "" || len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *FakeStorage) EmptyBucket(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("EmptyBucket"); err != nil {
		return err
	}
	b, err := f.bucket(bucket)
	if err != nil {
		return err
	}
	b.Objects = map[string][]byte{}
	return nil
}

func (f *FakeStorage) DeleteBucket(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("DeleteBucket"); err != nil {
		return err
	}
	b, ok := f.Buckets[bucket]
	if !ok {
		return nil
	}
	if len(b.Objects) > 0 {
		return fmt.Errorf("bucket %s not empty", bucket)
	}
	delete(f.Buckets, bucket)
	return nil
}

// FakeCatalog implements provisioning.CatalogBackend in memory.
type FakeCatalog struct {
	mu        sync.Mutex
	Databases map[string]string
	Crawlers  map[string]*provisioning.CrawlerObservation
	// StartCalls counts StartCrawler invocations per crawler.
	StartCalls map[string]int
	Fail       map[string]error
}

// NewFakeCatalog creates an empty fake catalog.
func NewFakeCatalog() *FakeCatalog {
	return &FakeCatalog{
		Databases:  map[string]string{},
		Crawlers:   map[string]*provisioning.CrawlerObservation{},
		StartCalls: map[string]int{},
		Fail:       map[string]error{},
	}
}

func (f *FakeCatalog) failure(op string) error {
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

func (f *FakeCatalog) DatabaseExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("DatabaseExists"); err != nil {
		return false, err
	}
	_, ok := f.Databases[name]
	return ok, nil
}

func (f *FakeCatalog) CreateDatabase(_ context.Context, name, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("CreateDatabase"); err != nil {
		return err
	}
	if _, ok := f.Databases[name]; !ok {
		f.Databases[name] = description
	}
	return nil
}

func (f *FakeCatalog) DeleteDatabase(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("DeleteDatabase"); err != nil {
		return err
	}
	delete(f.Databases, name)
	return nil
}

func (f *FakeCatalog) GetCrawler(_ context.Context, name string) (*provisioning.CrawlerObservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetCrawler"); err != nil {
		return nil, err
	}
	c, ok := f.Crawlers[name]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (f *FakeCatalog) CreateCrawler(_ context.Context, name, roleARN string, doc policy.CrawlerConfigDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("CreateCrawler"); err != nil {
		return err
	}
	if _, ok := f.Crawlers[name]; ok {
		return nil
	}
	f.Crawlers[name] = &provisioning.CrawlerObservation{
		DatabaseName:    doc.DatabaseName,
		TargetPath:      doc.TargetPath,
		Schedule:        doc.Schedule,
		RecrawlBehavior: doc.RecrawlBehavior,
		RoleARN:         roleARN,
	}
	return nil
}

func (f *FakeCatalog) UpdateCrawler(_ context.Context, name, roleARN string, doc policy.CrawlerConfigDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("UpdateCrawler"); err != nil {
		return err
	}
	c, ok := f.Crawlers[name]
	if !ok {
		return fmt.Errorf("crawler %s not found", name)
	}
	c.DatabaseName = doc.DatabaseName
	c.TargetPath = doc.TargetPath
	c.Schedule = doc.Schedule
	c.RecrawlBehavior = doc.RecrawlBehavior
	c.RoleARN = roleARN
	return nil
}

func (f *FakeCatalog) DeleteCrawler(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("DeleteCrawler"); err != nil {
		return err
	}
	delete(f.Crawlers, name)
	return nil
}

func (f *FakeCatalog) StartCrawler(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("StartCrawler"); err != nil {
		return err
	}
	c, ok := f.Crawlers[name]
	if !ok {
		return fmt.Errorf("crawler %s not found", name)
	}
	f.StartCalls[name]++
	c.Running = true
	return nil
}

func (f *FakeCatalog) CrawlState(_ context.Context, name string) (provisioning.CrawlState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("CrawlState"); err != nil {
		return "", err
	}
	c, ok := f.Crawlers[name]
	if !ok {
		return provisioning.CrawlNotFound, nil
	}
	if c.Running {
		return provisioning.CrawlRunning, nil
	}
	switch c.LastRunStatus {
	case "SUCCEEDED":
		return provisioning.CrawlSucceeded, nil
	case "FAILED":
		return provisioning.CrawlFailed, nil
	}
	return provisioning.CrawlNotFound, nil
}

// FinishCrawl transitions a running crawl to its final status.
func (f *FakeCatalog) FinishCrawl(name, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.Crawlers[name]; ok {
		c.Running = false
		c.LastRunStatus = status
	}
}

// FakeRoles implements provisioning.RoleBackend in memory.
type FakeRoles struct {
	mu       sync.Mutex
	ARNs     map[string]string
	Policies map[string]map[string]string
	Fail     map[string]error
}

// NewFakeRoles creates an empty fake role store.
func NewFakeRoles() *FakeRoles {
	return &FakeRoles{
		ARNs:     map[string]string{},
		Policies: map[string]map[string]string{},
		Fail:     map[string]error{},
	}
}

func (f *FakeRoles) failure(op string) error {
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

func (f *FakeRoles) GetRoleARN(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("GetRoleARN"); err != nil {
		return "", err
	}
	return f.ARNs[name], nil
}

func (f *FakeRoles) CreateRole(_ context.Context, name, _ string, _ map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("CreateRole"); err != nil {
		return "", err
	}
	if arn, ok := f.ARNs[name]; ok {
		return arn, nil
	}
	arn := "arn:aws:iam::123456789012:role/" + name
	f.ARNs[name] = arn
	f.Policies[name] = map[string]string{}
	return arn, nil
}

func (f *FakeRoles) PutRolePolicy(_ context.Context, roleName, policyName, document string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("PutRolePolicy"); err != nil {
		return err
	}
	if _, ok := f.ARNs[roleName]; !ok {
		return fmt.Errorf("role %s not found", roleName)
	}
	f.Policies[roleName][policyName] = document
	return nil
}

func (f *FakeRoles) DeleteRole(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failure("DeleteRole"); err != nil {
		return err
	}
	delete(f.ARNs, name)
	delete(f.Policies, name)
	return nil
}
