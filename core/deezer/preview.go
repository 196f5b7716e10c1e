package deezer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"EchoFM/core/errs"
	"EchoFM/logger"

	"github.com/google/uuid"
)

// DownloadPreview 将试听音频下载到唯一命名的临时文件。
// 返回本地文件路径，调用方负责删除。
func (c *Client) DownloadPreview(ctx context.Context, previewURL string) (string, error) {
	if previewURL == "" {
		return "", errs.New(errs.ErrInvalidArgument, "试听URL为空")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, previewURL, nil)
	if err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "创建下载请求失败")
	}

	resp, err := c.previewClient.Do(req)
	if err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "下载试听音频失败")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errs.New(errs.ErrNetwork, "下载试听音频失败，状态码: %d", resp.StatusCode)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("echofm_preview_%s.mp3", uuid.NewString()))
	out, err := os.Create(path)
	if err != nil {
		return "", errs.Wrap(errs.ErrNetwork, err, "创建临时文件失败")
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(path)
		return "", errs.Wrap(errs.ErrNetwork, err, "保存试听音频失败")
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", errs.Wrap(errs.ErrNetwork, err, "关闭临时文件失败")
	}

	logger.Debug("[DownloadPreview] 试听音频下载完成", logger.String("path", path))
	return path, nil
}
