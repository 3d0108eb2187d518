package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Row shapes read from the legacy database. Column values arrive with mixed
// SQLite types, so everything is scanned through nullable strings and
// converted afterwards.

type legacyAsset struct {
	UID         string
	Name        string
	CurrencyUID string
	GroupUID    string
}

type legacyCategory struct {
	UID  string
	Name string
	Type int64
}

type legacyTransaction struct {
	UID         string
	AssetUID    string
	ToAssetUID  string
	CategoryUID string
	Money       string
	Date        string
	DoType      string
	Content     string
}

type legacyBudget struct {
	UID        string
	TargetUID  string
	PeriodType int64
}

// legacyDB is the uploaded legacy database, opened as a second, independent
// in-memory SQLite instance entirely separate from the target store.
type legacyDB struct {
	db   *sql.DB
	conn *sql.Conn
}

// openLegacy loads the uploaded bytes into a fresh in-memory database.
func openLegacy(ctx context.Context, data []byte) (*legacyDB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open legacy database: %w", err)
	}

	err = conn.Raw(func(driverConn interface{}) error {
		c, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		return c.Deserialize(data, "")
	})
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("load legacy database: %w", err)
	}

	return &legacyDB{db: db, conn: conn}, nil
}

func (l *legacyDB) Close() {
	_ = l.conn.Close()
	_ = l.db.Close()
}

// assets returns non-deleted primary-ledger asset rows (ZDATA = '0').
func (l *legacyDB) assets(ctx context.Context) ([]legacyAsset, error) {
	rows, err := l.conn.QueryContext(ctx,
		"SELECT uid, NIC_NAME, currencyUid, groupUid FROM ASSETS WHERE uid IS NOT NULL AND ZDATA = '0'")
	if err != nil {
		return nil, fmt.Errorf("read legacy assets: %w", err)
	}
	defer rows.Close()

	var out []legacyAsset
	for rows.Next() {
		var uid, name, currencyUID, groupUID sql.NullString
		if err := rows.Scan(&uid, &name, &currencyUID, &groupUID); err != nil {
			return nil, fmt.Errorf("scan legacy asset: %w", err)
		}
		out = append(out, legacyAsset{
			UID:         uid.String,
			Name:        name.String,
			CurrencyUID: currencyUID.String,
			GroupUID:    groupUID.String,
		})
	}
	return out, rows.Err()
}

// categories returns non-deleted legacy category rows.
func (l *legacyDB) categories(ctx context.Context) ([]legacyCategory, error) {
	rows, err := l.conn.QueryContext(ctx,
		"SELECT uid, NAME, TYPE FROM ZCATEGORY WHERE uid IS NOT NULL AND C_IS_DEL != 1")
	if err != nil {
		return nil, fmt.Errorf("read legacy categories: %w", err)
	}
	defer rows.Close()

	var out []legacyCategory
	for rows.Next() {
		var (
			uid, name sql.NullString
			typeCode  sql.NullInt64
		)
		if err := rows.Scan(&uid, &name, &typeCode); err != nil {
			return nil, fmt.Errorf("scan legacy category: %w", err)
		}
		out = append(out, legacyCategory{
			UID:  uid.String,
			Name: name.String,
			Type: typeCode.Int64,
		})
	}
	return out, rows.Err()
}

// transactions returns all legacy transaction rows.
func (l *legacyDB) transactions(ctx context.Context) ([]legacyTransaction, error) {
	rows, err := l.conn.QueryContext(ctx,
		`SELECT uid, assetUid, toAssetUid, ctgUid, ZMONEY, ZDATE, DO_TYPE, ZCONTENT
		 FROM INOUTCOME
		 WHERE uid IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("read legacy transactions: %w", err)
	}
	defer rows.Close()

	var out []legacyTransaction
	for rows.Next() {
		var uid, assetUID, toAssetUID, ctgUID, money, date, doType, content sql.NullString
		if err := rows.Scan(&uid, &assetUID, &toAssetUID, &ctgUID, &money, &date, &doType, &content); err != nil {
			return nil, fmt.Errorf("scan legacy transaction: %w", err)
		}
		out = append(out, legacyTransaction{
			UID:         uid.String,
			AssetUID:    assetUID.String,
			ToAssetUID:  toAssetUID.String,
			CategoryUID: ctgUID.String,
			Money:       money.String,
			Date:        date.String,
			DoType:      doType.String,
			Content:     content.String,
		})
	}
	return out, rows.Err()
}

// budgets returns non-deleted legacy budget rows.
func (l *legacyDB) budgets(ctx context.Context) ([]legacyBudget, error) {
	rows, err := l.conn.QueryContext(ctx,
		"SELECT uid, targetUid, PERIOD_TYPE FROM BUDGET WHERE uid IS NOT NULL AND IS_DEL != 1")
	if err != nil {
		return nil, fmt.Errorf("read legacy budgets: %w", err)
	}
	defer rows.Close()

	var out []legacyBudget
	for rows.Next() {
		var (
			uid, targetUID sql.NullString
			periodType     sql.NullInt64
		)
		if err := rows.Scan(&uid, &targetUID, &periodType); err != nil {
			return nil, fmt.Errorf("scan legacy budget: %w", err)
		}
		out = append(out, legacyBudget{
			UID:        uid.String,
			TargetUID:  targetUID.String,
			PeriodType: periodType.Int64,
		})
	}
	return out, rows.Err()
}
