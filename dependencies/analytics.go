package dependencies

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Xushengqwer/publication_service/config"
)

// AnalyticsClient 外部浏览量统计服务的只读客户端。
// - 本服务把返回结果视为权威快照，从不合并部分结果。
type AnalyticsClient interface {
	// ViewsForURL 查询单个页面 URL 的真实浏览量。
	ViewsForURL(ctx context.Context, pageURL string) (int64, error)

	// AllViews 拉取全量 {稿件ID -> 浏览量} 映射，对账任务使用。
	AllViews(ctx context.Context) (map[uint64]int64, error)
}

type analyticsClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *core.ZapLogger
}

// InitAnalyticsClient 初始化统计服务客户端。
// - Transport 包一层 otelhttp，出站请求进入调用链追踪。
func InitAnalyticsClient(cfg *config.AnalyticsConfig, logger *core.ZapLogger) (AnalyticsClient, error) {
	if cfg == nil || cfg.BaseURL == "" {
		logger.Error("统计服务配置为空或缺少 baseUrl")
		return nil, fmt.Errorf("统计服务配置不完整，缺少 baseUrl")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		logger.Error("解析统计服务 baseUrl 失败", zap.String("baseUrl", cfg.BaseURL), zap.Error(err))
		return nil, fmt.Errorf("解析统计服务 baseUrl '%s' 失败: %w", cfg.BaseURL, err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	logger.Info("统计服务客户端初始化成功",
		zap.String("baseUrl", cfg.BaseURL),
		zap.Duration("timeout", timeout),
	)

	return &analyticsClient{
		httpClient: client,
		baseURL:    cfg.BaseURL,
		logger:     logger,
	}, nil
}

// viewsPayload 统计服务单 URL 查询的响应体。
type viewsPayload struct {
	Views int64 `json:"views"`
}

// ViewsForURL 实现单 URL 浏览量查询。
func (c *analyticsClient) ViewsForURL(ctx context.Context, pageURL string) (int64, error) {
	endpoint := fmt.Sprintf("%s/v1/views?url=%s", c.baseURL, url.QueryEscape(pageURL))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}

	var payload viewsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Error("解析统计服务单 URL 响应失败", zap.Error(err), zap.String("pageURL", pageURL))
		return 0, fmt.Errorf("解析统计服务响应失败: %w", err)
	}
	return payload.Views, nil
}

// AllViews 实现全量浏览量快照拉取。
// 响应体为 {"<postID>": <count>, ...}，键是字符串形式的稿件 ID。
func (c *analyticsClient) AllViews(ctx context.Context) (map[uint64]int64, error) {
	endpoint := c.baseURL + "/v1/views/all"

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var raw map[string]int64
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Error("解析统计服务全量响应失败", zap.Error(err))
		return nil, fmt.Errorf("解析统计服务全量响应失败: %w", err)
	}

	views := make(map[uint64]int64, len(raw))
	for idStr, count := range raw {
		var id uint64
		if _, err := fmt.Sscanf(idStr, "%d", &id); err != nil {
			// 键被污染时跳过该条，不让单条坏数据拖垮整轮对账
			c.logger.Warn("统计服务返回了无法解析的稿件 ID，已跳过", zap.String("id", idStr))
			continue
		}
		views[id] = count
	}
	return views, nil
}

func (c *analyticsClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("构造统计服务请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("请求统计服务失败", zap.Error(err), zap.String("endpoint", endpoint))
		return nil, fmt.Errorf("请求统计服务失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errMsgBytes, _ := io.ReadAll(resp.Body)
		c.logger.Error("统计服务返回非200状态码",
			zap.Int("状态码", resp.StatusCode),
			zap.String("endpoint", endpoint),
			zap.String("响应信息", string(errMsgBytes)),
		)
		return nil, fmt.Errorf("统计服务返回状态码 %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取统计服务响应失败: %w", err)
	}
	return body, nil
}
