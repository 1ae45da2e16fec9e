package labels

// Row はラベル1枚分
type Row struct {
	AssetCode string
	Name      string
	Category  string
	Location  string
	Status    string
}

type Filter struct {
	CategoryID *uint64
	LocationID *uint64
}

// Encoding は出力 CSV の文字コード
type Encoding string

const (
	// EncodingUTF8 は BOM 付き UTF-8（Excel 用）
	EncodingUTF8 Encoding = "utf8"
	// EncodingSJIS はラベルプリンタのソフト向け（CP932）
	EncodingSJIS Encoding = "sjis"
)
