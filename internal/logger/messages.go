package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("zh", l10n.LexiconMap{
		// pipeline
		"skip %s: rotation unsupported": "跳过 %s：不支持旋转",
		"attempt %s: %v":                "尝试 %s：%v",
		"attempt %s decoded %s":         "尝试 %s 解码出 %s",

		// codec
		"decoding %dx%d image":                  "正在解码 %dx%d 图像",
		"load %s: %v":                           "加载 %s：%v",
		"found %d symbols":                      "找到 %d 个符号",
		"retrying on bitmap rotated 90 degrees": "将位图旋转 90 度后重试",

		// scan command
		"%s: no barcode found":              "%s：未找到条码",
		"%s: %v":                            "%s：%v",
		"Scanning %d files with %d workers": "使用 %[2]d 个工作线程扫描 %[1]d 个文件",
		"Published %s to %s":                "已将 %s 发布到 %s",
		"Interrupted, shutting down...":     "已中断，正在退出...",
	})
}
