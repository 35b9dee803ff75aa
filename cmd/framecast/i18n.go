// Package main provides localization for the framecast CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Decode, transcode and inspect video frame by frame": "動画をフレーム単位でデコード・変換・検査",

		// Global flags
		"Path to a YAML configuration file":                   "YAML設定ファイルのパス",
		"Execution backend (cpu, cuda)":                       "実行バックエンド（cpu, cuda）",
		"Sample type of pixel buffers (uint8, float32, float16)": "ピクセルバッファのサンプル型（uint8, float32, float16）",
		"Log level (debug, info, warn, error)":                "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                             "全てのログ出力を抑制",

		// Info command
		"Show stream properties of a video file": "動画ファイルのストリーム情報を表示",
		"Codec:":        "コーデック:",
		"Resolution:":   "解像度:",
		"FPS:":          "フレームレート:",
		"Duration:":     "再生時間:",
		"Frames:":       "フレーム数:",
		"Pixel format:": "ピクセル形式:",
		"Has audio:":    "音声あり:",

		// Codecs command
		"List available decoders and encoders": "利用可能なデコーダとエンコーダを一覧表示",
		"List decoders only":                   "デコーダのみを表示",
		"List encoders only":                   "エンコーダのみを表示",
		"Decoders:":                            "デコーダ:",
		"Encoders:":                            "エンコーダ:",

		// Dump command
		"Export frames of a video as PNG thumbnails":            "動画のフレームをPNGサムネイルとして書き出し",
		"Output directory for thumbnails":                       "サムネイルの出力ディレクトリ",
		"Thumbnail width in pixels (0 = full size)":             "サムネイルの幅（ピクセル、0 = 原寸）",
		"First frame of the range (negative counts from the end)": "範囲の先頭フレーム（負数は末尾から数える）",
		"Frame after the last one of the range (0 = end of stream)": "範囲の終端の次のフレーム（0 = ストリーム末尾）",

		// Synth command
		"Encode a synthetic test animation": "合成テストアニメーションをエンコード",
		"Output video file path":            "出力動画ファイルパス",
		"Frame width in pixels":             "フレームの幅（ピクセル）",
		"Frame height in pixels":            "フレームの高さ（ピクセル）",
		"Number of frames to generate":      "生成するフレーム数",
		"Frame rate of the output":          "出力のフレームレート",
		"Encoder name (e.g. libx264)":       "エンコーダ名（例: libx264）",

		// Transcode command
		"Decode a video and re-encode it frame by frame": "動画をデコードしてフレーム単位で再エンコード",

		// Error messages
		"input file argument is required": "入力ファイル引数が必要です",
	})
}
