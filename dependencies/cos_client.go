package dependencies

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"github.com/tencentyun/cos-go-sdk-v5"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/config"
)

// COSClientInterface 对象存储客户端，稿件预览图与精选配图的上传/清理使用。
type COSClientInterface interface {
	GetClient() *cos.Client

	// UploadFile 从 io.Reader 上传对象，返回公开可访问的 URL。
	// objectKey 由调用方生成（见 service 层的对象键规则）。
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)

	// DeleteObject 按对象键删除，事务失败后的孤儿图片清理使用。
	DeleteObject(ctx context.Context, objectKey string) error
}

type cosClient struct {
	client *cos.Client

	// bucketURL 是 SDK 发起 API 调用的存储桶地址
	bucketURL *url.URL
	// publicBase 是拼接对外 URL 的基础地址，配置了 CDN 域名时与 bucketURL 不同
	publicBase *url.URL

	logger *core.ZapLogger
	cfg    *config.COSConfig
}

// InitCOS 初始化腾讯云 COS 客户端。
func InitCOS(cfg *config.COSConfig, logger *core.ZapLogger) (COSClientInterface, error) {
	if cfg == nil {
		logger.Error("COS 配置为空")
		return nil, fmt.Errorf("COS 配置不能为 nil")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" || cfg.BucketName == "" || cfg.AppID == "" || cfg.Region == "" {
		logger.Error("COS 配置不完整", zap.String("bucket", cfg.BucketName), zap.String("region", cfg.Region))
		return nil, fmt.Errorf("COS 配置不完整，缺少关键字段 (SecretID, SecretKey, BucketName, AppID, Region)")
	}

	bucketURLStr := fmt.Sprintf("https://%s-%s.cos.%s.myqcloud.com", cfg.BucketName, cfg.AppID, cfg.Region)
	bucketURL, err := url.Parse(bucketURLStr)
	if err != nil {
		logger.Error("解析 COS 存储桶 URL 失败", zap.String("url", bucketURLStr), zap.Error(err))
		return nil, fmt.Errorf("解析 COS 存储桶 URL '%s' 失败: %w", bucketURLStr, err)
	}

	// 公开访问地址：配置了 BaseURL（CDN / 自定义域名）就用它，否则公有读桶的标准地址即可
	publicBase := bucketURL
	if cfg.BaseURL != "" {
		pu, err := url.Parse(cfg.BaseURL)
		if err != nil {
			logger.Error("解析 COS 公开访问 BaseURL 失败", zap.String("baseURL", cfg.BaseURL), zap.Error(err))
			return nil, fmt.Errorf("解析 COS 公开访问 BaseURL '%s' 失败: %w", cfg.BaseURL, err)
		}
		publicBase = pu
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})

	logger.Info("COS 客户端初始化成功",
		zap.String("bucket", cfg.BucketName),
		zap.String("region", cfg.Region),
		zap.String("publicBase", publicBase.String()),
	)

	return &cosClient{
		client:     client,
		bucketURL:  bucketURL,
		publicBase: publicBase,
		logger:     logger,
		cfg:        cfg,
	}, nil
}

func (c *cosClient) GetClient() *cos.Client {
	return c.client
}

// publicObjectURL 把对象键拼到公开访问基础地址上。
func (c *cosClient) publicObjectURL(objectKey string) string {
	basePath := c.publicBase.Path
	if basePath != "/" && !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}

	u := *c.publicBase
	u.Path = basePath + strings.TrimPrefix(objectKey, "/")
	return u.String()
}

// UploadFile 实现对象上传。
func (c *cosClient) UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType:   contentType,
			ContentLength: size,
		},
	}

	resp, err := c.client.Object.Put(ctx, objectKey, reader, opts)
	if err != nil {
		c.logger.Error("上传对象到 COS 失败", zap.String("objectKey", objectKey), zap.Error(err))
		return "", fmt.Errorf("上传对象 '%s' 到 COS 失败: %w", objectKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("COS 上传返回非 200 状态码",
			zap.String("objectKey", objectKey),
			zap.Int("statusCode", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return "", fmt.Errorf("COS 上传失败，状态码: %d, 响应: %s", resp.StatusCode, body)
	}

	publicURL := c.publicObjectURL(objectKey)
	c.logger.Info("COS 对象上传成功",
		zap.String("objectKey", objectKey),
		zap.Int64("size", size),
		zap.String("url", publicURL),
	)
	return publicURL, nil
}

// DeleteObject 实现对象删除。
func (c *cosClient) DeleteObject(ctx context.Context, objectKey string) error {
	resp, err := c.client.Object.Delete(ctx, objectKey)
	if err != nil {
		c.logger.Error("删除 COS 对象失败", zap.String("objectKey", objectKey), zap.Error(err))
		return fmt.Errorf("删除 COS 对象 '%s' 失败: %w", objectKey, err)
	}
	defer resp.Body.Close()

	// 删除成功通常是 204，部分网关会回 200
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("COS 删除返回非成功状态码",
			zap.String("objectKey", objectKey),
			zap.Int("statusCode", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("COS 对象删除失败，状态码: %d, 响应: %s", resp.StatusCode, body)
	}

	c.logger.Info("COS 对象已删除", zap.String("objectKey", objectKey))
	return nil
}
