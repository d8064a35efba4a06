// Package i18n translates user-facing status messages. Messages are keyed by
// their English text; a key without a translation prints as itself.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	NewBookmark       = "New Bookmark"
	InvalidFile       = "Invalid File"
	ImportSuccessful  = "Import Successful"
	SyncSuccess       = "Sync Success"
	WebDAVSuccess     = "WebDAV Success"
	WebDAVFailed      = "WebDAV Failed"
	AITestPassed      = "AI Test Passed"
	AITestFailed      = "AI Test Failed"
	NoResultsFound    = "No results found"
	AllClassified     = "All bookmarks are already classified!"
	OrganizedCount    = "Organized %d bookmarks."
	LastSync          = "Last Sync"
	Never             = "Never"
	ImportedCount     = "Imported %d bookmarks."
	DeletedCount      = "Deleted %d items."
	MovedCount        = "Moved %d items."
	TaggedCount       = "Tagged %d bookmarks."
	ConfigureAIFirst  = "Please configure Custom API Key in settings first."
	AnalyzedCount     = "Analyzed %d bookmarks."
	ImportCancelled   = "Import cancelled."
	NothingSelected   = "Nothing selected."
	SyncNotConfigured = "WebDAV is not configured."
)

var supported = []language.Tag{
	language.English, // first entry is the matcher's fallback
	language.MustParse("zh-CN"),
	language.MustParse("zh-TW"),
	language.Japanese,
}

var dictionary = map[string]map[string]string{
	"en": {
		WebDAVSuccess: "WebDAV connection successful!",
		WebDAVFailed:  "Connection failed. Please check URL and credentials",
		AITestPassed:  "AI connection test passed!",
		AITestFailed:  "AI connection test failed: ",
	},
	"zh-CN": {
		NewBookmark:       "新书签",
		InvalidFile:       "无效文件",
		ImportSuccessful:  "导入成功",
		SyncSuccess:       "同步成功",
		WebDAVSuccess:     "WebDAV 连接成功！",
		WebDAVFailed:      "连接失败。请检查 URL 和凭证",
		AITestPassed:      "AI 连接测试通过！",
		AITestFailed:      "AI 连接测试失败: ",
		NoResultsFound:    "未找到结果",
		AllClassified:     "所有书签都已分类！",
		OrganizedCount:    "已整理 %d 个书签。",
		LastSync:          "上次同步",
		Never:             "从未",
		ImportedCount:     "已导入 %d 个书签。",
		DeletedCount:      "已删除 %d 项。",
		MovedCount:        "已移动 %d 项。",
		TaggedCount:       "已为 %d 个书签添加标签。",
		ConfigureAIFirst:  "请先在设置中配置自定义 API Key。",
		AnalyzedCount:     "已分析 %d 个书签。",
		ImportCancelled:   "已取消导入。",
		NothingSelected:   "未选择任何内容。",
		SyncNotConfigured: "尚未配置 WebDAV。",
	},
	"zh-TW": {
		NewBookmark:       "新書籤",
		InvalidFile:       "無效文件",
		ImportSuccessful:  "導入成功",
		SyncSuccess:       "同步成功",
		WebDAVSuccess:     "WebDAV 連接成功！",
		WebDAVFailed:      "連接失敗。請檢查 URL 和憑證",
		AITestPassed:      "AI 連接測試通過！",
		AITestFailed:      "AI 連接測試失敗: ",
		NoResultsFound:    "未找到結果",
		AllClassified:     "所有書籤都已分類！",
		OrganizedCount:    "已整理 %d 個書籤。",
		LastSync:          "上次同步",
		Never:             "從未",
		ImportedCount:     "已導入 %d 個書籤。",
		DeletedCount:      "已刪除 %d 項。",
		MovedCount:        "已移動 %d 項。",
		TaggedCount:       "已為 %d 個書籤添加標籤。",
		ConfigureAIFirst:  "請先在設置中配置自定義 API Key。",
		AnalyzedCount:     "已分析 %d 個書籤。",
		ImportCancelled:   "已取消導入。",
		NothingSelected:   "未選擇任何內容。",
		SyncNotConfigured: "尚未配置 WebDAV。",
	},
	"ja": {
		NewBookmark:       "新しいブックマーク",
		InvalidFile:       "無効なファイル",
		ImportSuccessful:  "インポート成功",
		SyncSuccess:       "同期成功",
		WebDAVSuccess:     "WebDAV接続成功！",
		WebDAVFailed:      "接続失敗。URLと認証情報を確認してください",
		AITestPassed:      "AI接続成功！",
		AITestFailed:      "AI接続失敗: ",
		NoResultsFound:    "結果が見つかりません",
		AllClassified:     "すべてのブックマークは分類済みです！",
		OrganizedCount:    "%d 件のブックマークを整理しました。",
		LastSync:          "最終同期",
		Never:             "なし",
		ImportedCount:     "%d 件のブックマークをインポートしました。",
		DeletedCount:      "%d 件を削除しました。",
		MovedCount:        "%d 件を移動しました。",
		TaggedCount:       "%d 件のブックマークにタグを追加しました。",
		ConfigureAIFirst:  "先に設定でカスタム API Key を設定してください。",
		AnalyzedCount:     "%d 件のブックマークを分析しました。",
		ImportCancelled:   "インポートをキャンセルしました。",
		NothingSelected:   "何も選択されていません。",
		SyncNotConfigured: "WebDAV が設定されていません。",
	},
}

var (
	cat     = buildCatalog()
	matcher = language.NewMatcher(supported)
)

func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for lang, msgs := range dictionary {
		tag := language.MustParse(lang)
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// Translator renders messages in one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Translator for lang (a BCP 47 tag such as "zh-CN"). Unknown
// or unsupported languages fall back to English.
func New(lang string) *Translator {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No {
			tag = supported[idx]
		}
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// Language returns the tag messages are rendered in.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// T translates key, formatting args into it printf-style.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}
