package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Decoder
		"opened %s: %dx%d %s %.3f fps, %d frames":      "%s を開きました: %dx%d %s %.3f fps, %d フレーム",
		"frame count from container sample table: %d":  "コンテナのサンプルテーブルから取得したフレーム数: %d",
		"seek to %.3fs failed: %v":                     "%.3f 秒へのシークに失敗しました: %v",

		// Encoder
		"initialized %s: %dx%d %s %.3f fps": "%s を初期化しました: %dx%d %s %.3f fps",
		"encode frame: encoder is not open": "フレームエンコード: エンコーダが開かれていません",
		"encode frame %d: make writable: %v": "フレーム %d のエンコード: 書き込み可能化に失敗: %v",
		"encode frame %d: convert: %v":       "フレーム %d のエンコード: 変換に失敗: %v",
		"encode frame %d: synchronize: %v":   "フレーム %d のエンコード: 同期に失敗: %v",
		"encode frame %d: send: %v":          "フレーム %d のエンコード: 送信に失敗: %v",
		"encode frame %d: drain: %v":         "フレーム %d のエンコード: パケット排出に失敗: %v",
		"finalized output with %d frames":    "%d フレームで出力を確定しました",
		"finalize on close: %v":              "クローズ時の確定に失敗しました: %v",
		"close output io: %v":                "出力の閉鎖に失敗しました: %v",

		// Backend
		"cuda decode unavailable for %s, falling back to software: %v": "%s の CUDA デコードが利用できないため、ソフトウェア処理に切り替えます: %v",

		// Sessions
		"synchronize on close: %v": "クローズ時の同期に失敗しました: %v",
		"write: session closed":    "書き込み: セッションは閉じられています",
		"write frame %d: %v":       "フレーム %d の書き込みに失敗しました: %v",

		// CLI
		"Decoding %s...":                "%s をデコード中...",
		"Transcoding %s to %s...":      "%s を %s へ変換中...",
		"Generating %d frames to %s...": "%d フレームを %s へ生成中...",
		"Wrote %d frames":               "%d フレームを書き込みました",
		"Output saved to %s":            "出力を %s に保存しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
	})
}
