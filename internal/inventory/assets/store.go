package assets

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"SIMAPRO-backend/internal/platform/db"
)

type AssetStore interface {
	Browse(ctx context.Context, f BrowseFilters, limit, offset int) ([]Asset, int64, error)
	GetByID(ctx context.Context, id uint64) (*Asset, error)
	Categories(ctx context.Context) ([]Ref, error)
	Locations(ctx context.Context) ([]Ref, error)
	Create(ctx context.Context, in CreateAssetRequest) (uint64, error)
	// ChangeStatus は現在の状態を fn に渡し、fn が nil を返したときだけ to に更新する
	ChangeStatus(ctx context.Context, id uint64, to Status, fn func(current Status) error) error
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const assetColumns = `
	a.id, a.asset_code, a.name, a.description, a.photos, a.category_id, a.brand, a.serial_number,
	a.specifications, a.location_id, a.supplier_id, a.purchase_date, a.purchase_price, a.status,
	a.qr_code_path, a.created_at, a.updated_at,
	c.id, c.name, l.id, l.name`

type scanner interface{ Scan(...any) error }

func scanAsset(row scanner, withSupplier bool) (*Asset, error) {
	var (
		a                                 Asset
		description, brand, serial, specs sql.NullString
		price, qr                         sql.NullString
		photos                            []byte
		supplierID                        sql.NullInt64
		purchaseDate                      sql.NullTime
		category, location                Ref
		supplierRefID                     sql.NullInt64
		supplierName                      sql.NullString
	)
	dest := []any{
		&a.ID, &a.AssetCode, &a.Name, &description, &photos, &a.CategoryID, &brand, &serial,
		&specs, &a.LocationID, &supplierID, &purchaseDate, &price, &a.Status,
		&qr, &a.CreatedAt, &a.UpdatedAt,
		&category.ID, &category.Name, &location.ID, &location.Name,
	}
	if withSupplier {
		dest = append(dest, &supplierRefID, &supplierName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	a.Description = nullStr(description)
	a.Brand = nullStr(brand)
	a.SerialNumber = nullStr(serial)
	a.Specifications = nullStr(specs)
	a.PurchasePrice = nullStr(price)
	a.QRCodePath = nullStr(qr)
	if supplierID.Valid {
		v := uint64(supplierID.Int64)
		a.SupplierID = &v
	}
	if purchaseDate.Valid {
		a.PurchaseDate = &purchaseDate.Time
	}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &a.Photos); err != nil {
			return nil, fmt.Errorf("decode photos of asset %d: %w", a.ID, err)
		}
	}
	a.Category = &category
	a.Location = &location
	if supplierRefID.Valid {
		a.Supplier = &Ref{ID: uint64(supplierRefID.Int64), Name: supplierName.String}
	}
	return &a, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// browseWhere はポータル検索の WHERE 句。利用可能な資産のみ
func browseWhere(f BrowseFilters) (string, []any) {
	var sb strings.Builder
	args := []any{}
	sb.WriteString(" WHERE a.status = ?")
	args = append(args, StatusAvailable)

	if f.Search != "" {
		like := "%" + f.Search + "%"
		sb.WriteString(" AND (LOWER(a.name) LIKE ? OR LOWER(a.asset_code) LIKE ? OR LOWER(COALESCE(a.brand, '')) LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.CategoryID != nil {
		sb.WriteString(" AND a.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.LocationID != nil {
		sb.WriteString(" AND a.location_id = ?")
		args = append(args, *f.LocationID)
	}
	return sb.String(), args
}

func (s *Store) Browse(ctx context.Context, f BrowseFilters, limit, offset int) ([]Asset, int64, error) {
	where, args := browseWhere(f)

	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assets a"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT` + assetColumns + `
	FROM assets a
	JOIN categories c ON c.id = a.category_id
	JOIN locations l ON l.id = a.location_id` + where + `
	ORDER BY a.name ASC, a.id ASC
	LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []Asset{}
	for rows.Next() {
		a, err := scanAsset(rows, false)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *a)
	}
	return items, total, rows.Err()
}

// GetByID は該当なしで sql.ErrNoRows
func (s *Store) GetByID(ctx context.Context, id uint64) (*Asset, error) {
	q := `SELECT` + assetColumns + `, sp.id, sp.name
	FROM assets a
	JOIN categories c ON c.id = a.category_id
	JOIN locations l ON l.id = a.location_id
	LEFT JOIN suppliers sp ON sp.id = a.supplier_id
	WHERE a.id = ?`
	return scanAsset(s.db.QueryRowContext(ctx, q, id), true)
}

func (s *Store) refs(ctx context.Context, table string) ([]Ref, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM "+table+" ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Ref{}
	for rows.Next() {
		var r Ref
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Categories(ctx context.Context) ([]Ref, error) { return s.refs(ctx, "categories") }
func (s *Store) Locations(ctx context.Context) ([]Ref, error)  { return s.refs(ctx, "locations") }

// Create は仮コードで INSERT し、同じ Tx で AST+連番 に確定させる
func (s *Store) Create(ctx context.Context, in CreateAssetRequest) (uint64, error) {
	var photos any
	if len(in.Photos) > 0 {
		b, err := json.Marshal(in.Photos)
		if err != nil {
			return 0, err
		}
		photos = string(b)
	}
	status := in.Status
	if status == "" {
		status = StatusAvailable
	}

	var id uint64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		tmp := db.TempCode()
		const ins = `
	INSERT INTO assets
	(asset_code, name, description, photos, category_id, brand, serial_number, specifications,
	 location_id, supplier_id, purchase_date, purchase_price, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, ins, tmp, in.Name, in.Description, photos, in.CategoryID, in.Brand,
			in.SerialNumber, in.Specifications, in.LocationID, in.SupplierID, in.PurchaseDate, in.PurchasePrice, status)
		if err != nil {
			return err
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(lastID)
		return FinalizeCode(ctx, tx, "assets", "asset_code", "AST", id, tmp)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FinalizeCode は仮コードを prefix + 6桁連番 に置き換える
func FinalizeCode(ctx context.Context, tx db.DBTX, table, col, prefix string, id uint64, tmp string) error {
	q := fmt.Sprintf(`UPDATE %s SET %s = %s WHERE id = ? AND %s = ?`, table, col, db.CodeExpr(prefix, "id", 6), col)
	res, err := tx.ExecContext(ctx, q, id, tmp)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff != 1 {
		return fmt.Errorf("finalize %s.%s for id %d: no row updated", table, col, id)
	}
	return nil
}

func (s *Store) ChangeStatus(ctx context.Context, id uint64, to Status, fn func(current Status) error) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		cur, err := LockStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}
		return SetStatus(ctx, tx, id, to)
	})
}

// LockStatus は資産行を FOR UPDATE でロックして現在の状態を返す。該当なしで sql.ErrNoRows
func LockStatus(ctx context.Context, tx db.DBTX, id uint64) (Status, error) {
	var st Status
	err := tx.QueryRowContext(ctx, `SELECT status FROM assets WHERE id = ? FOR UPDATE`, id).Scan(&st)
	return st, err
}

func SetStatus(ctx context.Context, tx db.DBTX, id uint64, to Status) error {
	_, err := tx.ExecContext(ctx, `UPDATE assets SET status = ? WHERE id = ?`, to, id)
	return err
}
