package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// blobOpener opens a blob for streaming reads.
type blobOpener interface {
	Open(ctx context.Context, containerName, blobName string) (io.ReadCloser, error)
}

type azblobOpener struct {
	client *azblob.Client
}

func (o *azblobOpener) Open(ctx context.Context, containerName, blobName string) (io.ReadCloser, error) {
	resp, err := o.client.DownloadStream(ctx, containerName, blobName, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// AzureBlobFetcher reads images from a single storage account using
// shared key credentials. URLs take the form
// https://<account>.blob.core.windows.net/<container>/<blob>.
type AzureBlobFetcher struct {
	host     string
	opener   blobOpener
	maxBytes int64
}

func NewAzureBlobFetcher(accountName, accountKey string, maxBytes int64) (*AzureBlobFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	host := fmt.Sprintf("%s.blob.core.windows.net", accountName)
	client, err := azblob.NewClientWithSharedKeyCredential("https://"+host, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}

	return &AzureBlobFetcher{
		host:     host,
		opener:   &azblobOpener{client: client},
		maxBytes: maxBytes,
	}, nil
}

// Handles reports whether ref points into this fetcher's storage account.
func (s *AzureBlobFetcher) Handles(ref *url.URL) bool {
	return strings.EqualFold(ref.Hostname(), s.host)
}

func (s *AzureBlobFetcher) Fetch(ctx context.Context, ref *url.URL, dst io.Writer) (int64, error) {
	containerName, blobName, err := splitBlobPath(ref)
	if err != nil {
		return 0, err
	}

	body, err := s.opener.Open(ctx, containerName, blobName)
	if err != nil {
		return 0, fmt.Errorf("download failed: %w", err)
	}
	defer body.Close()

	return copyLimited(dst, body, s.maxBytes)
}

func splitBlobPath(ref *url.URL) (string, string, error) {
	path := strings.TrimPrefix(ref.Path, "/")
	containerName, blobName, ok := strings.Cut(path, "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob URL %q: expected /<container>/<blob>", ref.Redacted())
	}
	return containerName, blobName, nil
}

// RoutingFetcher sends blob-account URLs to the Azure fetcher and everything
// else over HTTP.
type RoutingFetcher struct {
	http  Fetcher
	azure *AzureBlobFetcher
}

// NewRoutingFetcher creates a routing fetcher. azure may be nil.
func NewRoutingFetcher(httpFetcher Fetcher, azure *AzureBlobFetcher) *RoutingFetcher {
	return &RoutingFetcher{http: httpFetcher, azure: azure}
}

func (r *RoutingFetcher) Fetch(ctx context.Context, ref *url.URL, dst io.Writer) (int64, error) {
	if r.azure != nil && r.azure.Handles(ref) {
		return r.azure.Fetch(ctx, ref, dst)
	}
	return r.http.Fetch(ctx, ref, dst)
}
