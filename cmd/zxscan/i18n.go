package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Chinese translations for CLI messages.
	l10n.Register("zh", l10n.LexiconMap{
		"Detect and decode barcodes in image files": "检测并解码图像文件中的条码",
		"Decode barcodes from image files":          "从图像文件解码条码",
		"Render text as a barcode image":            "将文本渲染为条码图像",

		// scan flags
		"YAML configuration file":                                           "YAML 配置文件",
		"look for every supported format":                                   "查找所有支持的格式",
		"report every barcode in each image":                                "报告每个图像中的所有条码",
		"look for QR codes only":                                            "仅查找二维码",
		"retry on the image turned a quarter turn":                          "将图像旋转四分之一圈后重试",
		"maximum decode width in pixels":                                    "解码的最大宽度（像素）",
		"maximum decode height in pixels":                                   "解码的最大高度（像素）",
		"spend more time looking for barcodes":                              "花更多时间查找条码",
		"hint that the image is a clean barcode render with minimal border": "提示图像是边框极小的纯条码渲染",
		"character set of byte payloads":                                    "字节内容的字符集",
		"log level (debug, info, warn, error, quiet)":                       "日志级别（debug、info、warn、error、quiet）",
		"number of files decoded in parallel":                               "并行解码的文件数",
		"publish results to this MQTT broker":                               "将结果发布到此 MQTT 代理",
		"MQTT topic for results":                                            "结果的 MQTT 主题",
		"no image files given":                                              "未指定图像文件",

		// generate flags
		"output PNG file path":                     "输出 PNG 文件路径",
		"QR code size or barcode width in pixels":  "二维码尺寸或条码宽度（像素）",
		"linear barcode height in pixels":          "一维条码高度（像素）",
		"image drawn in the centre of a QR code":   "绘制在二维码中心的图像",
		"logo width relative to the QR code":       "标志宽度与二维码的比例",
		"text printed under a linear barcode":      "打印在一维条码下方的文字",
		"TrueType font for the caption":            "说明文字的 TrueType 字体",
		"also print the symbol's modules as text":  "同时以文本形式输出条码模块",
		"expected a format and the text to encode": "需要格式和要编码的文本",
		"Wrote %s":              "已写入 %s",
		"unsupported format %q": "不支持的格式 %q",
	})
}
