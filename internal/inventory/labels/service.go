package labels

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"SIMAPRO-backend/internal/platform/apierr"
)

var header = []string{"asset_code", "name", "category", "location", "status"}

type Service struct{ store LabelStore }

func NewService(store LabelStore) *Service { return &Service{store: store} }

func encoderFor(enc Encoding) (*encoding.Encoder, error) {
	switch enc {
	case "", EncodingUTF8:
		return unicode.UTF8BOM.NewEncoder(), nil
	case EncodingSJIS:
		// CP932 に無い文字は置換文字にする
		return encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()), nil
	}
	return nil, apierr.ErrInvalid(fmt.Sprintf("unsupported encoding %q", enc))
}

// Export は絞り込んだ資産を CSV で w に書く
func (s *Service) Export(ctx context.Context, f Filter, enc Encoding, w io.Writer) (int, error) {
	e, err := encoderFor(enc)
	if err != nil {
		return 0, err
	}
	rows, err := s.store.Rows(ctx, f)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(transform.NewWriter(w, e), rows); err != nil {
		return 0, fmt.Errorf("write label csv: %w", err)
	}
	slog.Info("label csv exported", "rows", len(rows), "encoding", enc)
	return len(rows), nil
}

// WriteCSV はヘッダ行 + 1資産1行。w は Close まで面倒を見る
func WriteCSV(w io.WriteCloser, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.AssetCode, r.Name, r.Category, r.Location, r.Status}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return w.Close()
}
