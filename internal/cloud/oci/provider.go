// Package oci provides OCI operations.
package oci

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	wfcommon "github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"
)

// Provider implements OCI cloud operations.
type Provider struct {
	configProvider common.ConfigurationProvider
	region         string
	logger         *logger.Logger
}

// NewProvider creates a new OCI provider instance.
func NewProvider(region string, log *logger.Logger) (*Provider, error) {
	configProvider := common.DefaultConfigProvider()
	return &Provider{
		configProvider: configProvider,
		region:         region,
		logger:         log,
	}, nil
}

func (p *Provider) objectStorage() (objectstorage.ObjectStorageClient, error) {
	client, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(p.configProvider)
	if err != nil {
		return client, fmt.Errorf("failed to create object storage client: %w", err)
	}
	if p.region != "" {
		client.SetRegion(p.region)
	}
	return client, nil
}

// GetNamespace retrieves the Object Storage namespace for the tenancy.
func (p *Provider) GetNamespace(ctx context.Context) (string, error) {
	client, err := p.objectStorage()
	if err != nil {
		return "", err
	}
	req := objectstorage.GetNamespaceRequest{}
	resp, err := client.GetNamespace(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to get namespace: %w", err)
	}
	return *resp.Value, nil
}

// CheckBucketExists checks if a bucket exists.
func (p *Provider) CheckBucketExists(ctx context.Context, namespace, bucketName string) (bool, error) {
	client, err := p.objectStorage()
	if err != nil {
		return false, err
	}
	req := objectstorage.HeadBucketRequest{
		NamespaceName: &namespace,
		BucketName:    &bucketName,
	}
	_, err = client.HeadBucket(ctx, req)
	if err != nil {
		if serviceErr, ok := common.IsServiceError(err); ok && serviceErr.GetHTTPStatusCode() == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket: %w", err)
	}
	return true, nil
}

// CreateBucket creates a new bucket.
func (p *Provider) CreateBucket(ctx context.Context, namespace, compartmentID, bucketName string) error {
	client, err := p.objectStorage()
	if err != nil {
		return err
	}
	req := objectstorage.CreateBucketRequest{
		NamespaceName: &namespace,
		CreateBucketDetails: objectstorage.CreateBucketDetails{
			Name:          &bucketName,
			CompartmentId: &compartmentID,
		},
	}
	_, err = client.CreateBucket(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	p.logger.Successf("Created bucket: %s", bucketName)
	return nil
}

// CheckCompartmentExists checks if a compartment is accessible.
func (p *Provider) CheckCompartmentExists(ctx context.Context, compartmentID string) error {
	client, err := identity.NewIdentityClientWithConfigurationProvider(p.configProvider)
	if err != nil {
		return fmt.Errorf("failed to create identity client: %w", err)
	}
	if p.region != "" {
		client.SetRegion(p.region)
	}
	req := identity.GetCompartmentRequest{
		CompartmentId: &compartmentID,
	}
	_, err = client.GetCompartment(ctx, req)
	if err != nil {
		return fmt.Errorf("compartment not accessible: %w", err)
	}
	return nil
}

// UploadToObjectStorage uploads a file to OCI Object Storage.
func (p *Provider) UploadToObjectStorage(ctx context.Context, namespace, bucketName, objectName, filePath string) error {
	client, err := p.objectStorage()
	if err != nil {
		return err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	fileInfo, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}
	contentLength := fileInfo.Size()
	req := objectstorage.PutObjectRequest{
		NamespaceName: &namespace,
		BucketName:    &bucketName,
		ObjectName:    &objectName,
		PutObjectBody: file,
		ContentLength: &contentLength,
	}
	_, err = client.PutObject(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	p.logger.Debugf("Uploaded %s to bucket %s", objectName, bucketName)
	return nil
}

// EnsureBucket creates the bucket in compartmentID unless it already exists and returns
// the tenancy namespace.
func (p *Provider) EnsureBucket(ctx context.Context, compartmentID, bucketName string) (string, error) {
	namespace, err := p.GetNamespace(ctx)
	if err != nil {
		return "", err
	}
	exists, err := p.CheckBucketExists(ctx, namespace, bucketName)
	if err != nil {
		return "", err
	}
	if exists {
		return namespace, nil
	}
	if err := p.CheckCompartmentExists(ctx, compartmentID); err != nil {
		return "", err
	}
	if err := p.CreateBucket(ctx, namespace, compartmentID, bucketName); err != nil {
		return "", err
	}
	return namespace, nil
}

// UploadDir uploads every file below root to the bucket, named prefix/<relative path>.
// It returns the number of files uploaded.
func (p *Provider) UploadDir(ctx context.Context, compartmentID, bucketName, prefix, root string) (int, error) {
	namespace, err := p.EnsureBucket(ctx, compartmentID, bucketName)
	if err != nil {
		return 0, err
	}
	files, err := wfcommon.ListFiles(root)
	if err != nil {
		return 0, err
	}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		objectName := path.Join(prefix, rel)
		if err := p.UploadToObjectStorage(ctx, namespace, bucketName, objectName, filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return 0, err
		}
	}
	p.logger.Successf("Uploaded %d files to bucket %s", len(files), bucketName)
	return len(files), nil
}
