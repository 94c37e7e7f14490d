package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auction-ledger/internal/auctionerrors"
	model "auction-ledger/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
)

const pgSerializationFailure = "40001"

// NewPostgres opens a pgx-backed connection pool.
func NewPostgres(addr, database, user, password string) (db *sql.DB, close func() error, err error) {
	url := fmt.Sprintf("postgres://%s:%s@%s/%s", user, password, addr, database)

	db, err = sql.Open("pgx", url)
	if err != nil {
		return nil, nil, err
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, nil, err
	}

	return db, db.Close, nil
}

var schema = []string{
	`create table if not exists items (
		item_id        text primary key,
		title          text not null,
		description    text not null default '',
		starting_price numeric not null,
		reserve_price  numeric,
		auction_end    timestamptz not null,
		owner_id       text not null,
		status         text not null default 'active',
		sold           boolean not null default false,
		created_at     timestamptz not null default now()
	)`,
	`create table if not exists bids (
		bid_id     text primary key,
		item_id    text not null references items (item_id),
		bidder_id  text not null,
		amount     numeric not null,
		status     text not null default 'ACTIVE',
		created_at timestamptz not null
	)`,
	`create index if not exists bids_item_status_amount_idx
		on bids (item_id, status, amount desc)`,
	`create index if not exists bids_bidder_idx on bids (bidder_id)`,
}

// PostgresRepo is an AuctionLedger backed by Postgres. AppendBid and
// SettleItem run as serializable transactions; serialization failures are
// mapped to auctionerrors.ErrConflict so the service can retry them.
type PostgresRepo struct {
	db *sql.DB
}

// NewPostgresRepo creates the ledger and bootstraps the schema.
func NewPostgresRepo(db *sql.DB) (*PostgresRepo, error) {
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("can't apply schema: %w", err)
		}
	}
	return &PostgresRepo{db: db}, nil
}

type txFunc func(*sql.Tx) error

// withSerializableTx runs fn inside one serializable transaction,
// rolling back on error or panic.
func (r *PostgresRepo) withSerializableTx(ctx context.Context, fn txFunc) (err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("can't begin tx: %w", err)
	}

	defer func() {
		p := recover()
		switch {
		case p != nil:
			_ = tx.Rollback()
			panic(p)

		case err != nil:
			rbErr := tx.Rollback()
			if rbErr != nil {
				err = fmt.Errorf("can't rollback tx: %w. original error: %w", rbErr, err)
			}

		default:
			err = tx.Commit()
			if err != nil {
				err = fmt.Errorf("can't commit tx: %w", mapPgError(err))
			}
		}
	}()

	err = fn(tx)
	return
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgSerializationFailure {
		return fmt.Errorf("%w: %s", auctionerrors.ErrConflict, pgErr.Message)
	}
	return err
}

func (r *PostgresRepo) AddItem(ctx context.Context, item model.AuctionItem) error {
	q := `
		insert into items (item_id, title, description, starting_price, reserve_price,
		                   auction_end, owner_id, status, sold, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		on conflict (item_id) do nothing
	`

	var reserve decimal.NullDecimal
	if item.ReservePrice != nil {
		reserve = decimal.NewNullDecimal(*item.ReservePrice)
	}

	res, err := r.db.ExecContext(ctx, q,
		item.ItemID, item.Title, item.Description, item.StartingPrice, reserve,
		item.AuctionEnd, item.OwnerID, item.Status, item.Sold, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("can't insert item: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("add item %s: %w", item.ItemID, auctionerrors.ErrItemExists)
	}
	return nil
}

func (r *PostgresRepo) GetItem(ctx context.Context, itemID string) (model.AuctionItem, error) {
	q := `
		select item_id, title, description, starting_price, reserve_price,
		       auction_end, owner_id, status, sold, created_at
		from items
		where item_id = $1
	`
	item, err := scanItem(r.db.QueryRowContext(ctx, q, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuctionItem{}, fmt.Errorf("get item %s: %w", itemID, auctionerrors.ErrItemNotFound)
	}
	return item, err
}

func (r *PostgresRepo) GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	if _, err := r.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	q := `
		select bid_id, item_id, bidder_id, amount, status, created_at
		from bids
		where item_id = $1
		order by created_at, bid_id
	`
	rows, err := r.db.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, fmt.Errorf("can't query bids: %w", err)
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		var b model.Bid
		if err := rows.Scan(&b.BidID, &b.ItemID, &b.BidderID, &b.Amount, &b.Status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("can't scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bids: %w", err)
	}

	return bids, nil
}

func (r *PostgresRepo) AppendBid(ctx context.Context, bid model.Bid) error {
	err := r.withSerializableTx(ctx, func(tx *sql.Tx) error {
		demote := `
			update bids
			set status = $1
			where item_id = $2 and status = $3
		`
		if _, err := tx.ExecContext(ctx, demote, model.BidOutbid, bid.ItemID, model.BidActive); err != nil {
			return fmt.Errorf("can't demote previous leader: %w", mapPgError(err))
		}

		insert := `
			insert into bids (bid_id, item_id, bidder_id, amount, status, created_at)
			values ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.ExecContext(ctx, insert,
			bid.BidID, bid.ItemID, bid.BidderID, bid.Amount, model.BidActive, bid.CreatedAt,
		); err != nil {
			return fmt.Errorf("can't insert bid: %w", mapPgError(err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append bid for item %s: %w", bid.ItemID, err)
	}
	return nil
}

func (r *PostgresRepo) GetBid(ctx context.Context, bidID string) (model.Bid, error) {
	q := `
		select bid_id, item_id, bidder_id, amount, status, created_at
		from bids
		where bid_id = $1
	`
	var b model.Bid
	err := r.db.QueryRowContext(ctx, q, bidID).
		Scan(&b.BidID, &b.ItemID, &b.BidderID, &b.Amount, &b.Status, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("can't query bid: %w", err)
	}
	return b, nil
}

func (r *PostgresRepo) UpdateBidStatus(ctx context.Context, bidID string, status model.BidStatus) error {
	q := `update bids set status = $1 where bid_id = $2`

	res, err := r.db.ExecContext(ctx, q, status, bidID)
	if err != nil {
		return fmt.Errorf("can't update bid status: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("update bid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return nil
}

func (r *PostgresRepo) SettleItem(ctx context.Context, itemID, winningBidID string, sold bool) error {
	err := r.withSerializableTx(ctx, func(tx *sql.Tx) error {
		if winningBidID != "" {
			promote := `update bids set status = $1 where bid_id = $2 and item_id = $3`
			res, err := tx.ExecContext(ctx, promote, model.BidWinning, winningBidID, itemID)
			if err != nil {
				return fmt.Errorf("can't promote winning bid: %w", mapPgError(err))
			}
			if affected, err := res.RowsAffected(); err != nil {
				return fmt.Errorf("can't get affected rows: %w", err)
			} else if affected == 0 {
				return fmt.Errorf("winning bid %s: %w", winningBidID, auctionerrors.ErrBidNotFound)
			}
		}

		end := `update items set status = $1, sold = $2 where item_id = $3`
		res, err := tx.ExecContext(ctx, end, model.ItemEnded, sold, itemID)
		if err != nil {
			return fmt.Errorf("can't end item: %w", mapPgError(err))
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("can't get affected rows: %w", err)
		} else if affected == 0 {
			return auctionerrors.ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("settle item %s: %w", itemID, err)
	}
	return nil
}

func (r *PostgresRepo) GetItemsByBidder(ctx context.Context, userID string) ([]model.AuctionItem, error) {
	q := `
		select distinct i.item_id, i.title, i.description, i.starting_price, i.reserve_price,
		       i.auction_end, i.owner_id, i.status, i.sold, i.created_at
		from items i
		join bids b on b.item_id = i.item_id
		where b.bidder_id = $1
		order by i.item_id
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("can't query items: %w", err)
	}
	defer rows.Close()

	var items []model.AuctionItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over items: %w", err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("get items for user %s: %w", userID, auctionerrors.ErrUserNoBids)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem maps one items row into the model. All columns are scanned into
// typed destinations so field drift fails loudly instead of producing
// zero values.
func scanItem(row rowScanner) (model.AuctionItem, error) {
	var (
		item    model.AuctionItem
		reserve decimal.NullDecimal
	)
	err := row.Scan(
		&item.ItemID, &item.Title, &item.Description, &item.StartingPrice, &reserve,
		&item.AuctionEnd, &item.OwnerID, &item.Status, &item.Sold, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AuctionItem{}, err
		}
		return model.AuctionItem{}, fmt.Errorf("can't scan item: %w", err)
	}
	if reserve.Valid {
		item.ReservePrice = &reserve.Decimal
	}
	return item, nil
}
