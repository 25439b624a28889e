// Package azure provides Azure cloud operations.
package azure

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
)

// Provider implements Azure cloud operations.
type Provider struct {
	accountURL string
	credential azcore.TokenCredential
	logger     *logger.Logger
}

// NewProvider creates a new Azure provider instance for the storage account at accountURL.
func NewProvider(accountURL string, log *logger.Logger) (*Provider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	log.Debug("Successfully created DefaultAzureCredential")
	return &Provider{
		accountURL: accountURL,
		credential: cred,
		logger:     log,
	}, nil
}

func (p *Provider) client() (*azblob.Client, error) {
	client, err := azblob.NewClient(p.accountURL, p.credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return client, nil
}

// EnsureContainer creates the container unless it already exists.
func (p *Provider) EnsureContainer(ctx context.Context, container string) error {
	client, err := p.client()
	if err != nil {
		return err
	}
	_, err = client.CreateContainer(ctx, container, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			p.logger.Debugf("Container %s already exists", container)
			return nil
		}
		return fmt.Errorf("failed to create container: %w", err)
	}
	p.logger.Successf("Created container: %s", container)
	return nil
}

// UploadFile uploads a local file to a blob.
func (p *Provider) UploadFile(ctx context.Context, container, blobName, filePath string) error {
	client, err := p.client()
	if err != nil {
		return err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	if _, err := client.UploadFile(ctx, container, blobName, file, nil); err != nil {
		return fmt.Errorf("failed to upload blob %s: %w", blobName, err)
	}
	p.logger.Debugf("Uploaded %s to container %s", blobName, container)
	return nil
}

// UploadDir uploads every file below root to the container, named prefix/<relative path>.
// It returns the number of files uploaded.
func (p *Provider) UploadDir(ctx context.Context, container, prefix, root string) (int, error) {
	if err := p.EnsureContainer(ctx, container); err != nil {
		return 0, err
	}
	files, err := common.ListFiles(root)
	if err != nil {
		return 0, err
	}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := p.UploadFile(ctx, container, path.Join(prefix, rel), filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return 0, err
		}
	}
	p.logger.Successf("Uploaded %d files to container %s", len(files), container)
	return len(files), nil
}
