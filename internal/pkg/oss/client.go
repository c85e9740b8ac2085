package oss

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/qs3c/vidgen_server/config"
)

// 转存下载超时
const downloadTimeout = 60 * time.Second

type Client struct {
	client     *oss.Client
	bucket     *oss.Bucket
	bucketName string
	cdnDomain  string
	httpClient *http.Client
}

func NewClient(cfg *config.OSSConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &Client{
		client:     client,
		bucket:     bucket,
		bucketName: cfg.BucketName,
		cdnDomain:  cfg.CDNDomain,
		httpClient: &http.Client{Timeout: downloadTimeout},
	}, nil
}

// MirrorVideo 下载生成结果并转存到 videos/<email>/<时间戳><扩展名>
// 第三方返回的链接会过期，转存后返回长期可用的地址
func (c *Client) MirrorVideo(ctx context.Context, sourceURL, email string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download video: status %d", resp.StatusCode)
	}

	objectKey := VideoKey(email, sourceURL, time.Now())

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = getContentType(path.Ext(objectKey))
	}

	if err := c.bucket.PutObject(objectKey, resp.Body, oss.ContentType(contentType)); err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}

	return c.GetURL(objectKey), nil
}

// GetURL 获取文件访问 URL
func (c *Client) GetURL(objectKey string) string {
	if c.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", c.cdnDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.%s/%s", c.bucketName, c.client.Config.Endpoint, objectKey)
}

// VideoKey 生成对象 key，邮箱中的 @ 等字符替换掉
func VideoKey(email, sourceURL string, now time.Time) string {
	ext := path.Ext(strings.SplitN(sourceURL, "?", 2)[0])
	if ext == "" || len(ext) > 5 {
		ext = ".mp4"
	}
	owner := strings.NewReplacer("@", "_at_", "/", "_", " ", "_").Replace(strings.ToLower(email))
	return fmt.Sprintf("videos/%s/%d%s", owner, now.UnixNano(), ext)
}

// getContentType 根据扩展名获取 Content-Type
func getContentType(ext string) string {
	switch ext {
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
