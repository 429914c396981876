// Package rewards runs the game economy: XP and carrots earned from practice
// and assessments, the shop, and mystery boxes.
package rewards

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lexihop/lexihop/internal/assessment"
)

const (
	XPPerCorrect      = 10
	CarrotsPerCorrect = 2
	XPPerAttempt      = 2 // participation, even when wrong
	MysteryBoxCost    = 15
)

var (
	ErrInsufficientCarrots = errors.New("not enough carrots")
	ErrItemNotFound        = errors.New("shop item not found")
)

type Wallet struct {
	ChildID string `json:"child_id"`
	XP      int    `json:"xp"`
	Carrots int    `json:"carrots"`
}

type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"` // hat, accessory, theme, sticker
	Cost int    `json:"cost"`
}

type Purchase struct {
	ID          string `json:"id"`
	ChildID     string `json:"child_id"`
	ItemID      string `json:"item_id"`
	Source      string `json:"source"` // shop | mystery-box
	PurchasedAt int64  `json:"purchased_at"`
}

// defaultCatalog seeds the shop on first boot.
var defaultCatalog = []Item{
	{ID: "hat-straw", Name: "Straw Hat", Kind: "hat", Cost: 20},
	{ID: "hat-wizard", Name: "Wizard Hat", Kind: "hat", Cost: 35},
	{ID: "acc-glasses", Name: "Reading Glasses", Kind: "accessory", Cost: 15},
	{ID: "acc-scarf", Name: "Cozy Scarf", Kind: "accessory", Cost: 25},
	{ID: "theme-meadow", Name: "Meadow Theme", Kind: "theme", Cost: 40},
	{ID: "theme-space", Name: "Space Theme", Kind: "theme", Cost: 50},
	{ID: "sticker-star", Name: "Gold Star Sticker", Kind: "sticker", Cost: 5},
	{ID: "sticker-book", Name: "Bookworm Sticker", Kind: "sticker", Cost: 5},
}

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service { return &Service{db: db} }

// EnsureCatalog installs the default shop items when the table is empty.
func (s *Service) EnsureCatalog(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shop_items`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, it := range defaultCatalog {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO shop_items (id, name, kind, cost) VALUES ($1,$2,$3,$4)`,
			it.ID, it.Name, it.Kind, it.Cost); err != nil {
			return err
		}
	}
	return nil
}

// Wallet returns the child's balances, creating an empty wallet on first read.
func (s *Service) Wallet(ctx context.Context, childID string) (Wallet, error) {
	w := Wallet{ChildID: childID}
	err := s.db.QueryRowContext(ctx,
		`SELECT xp, carrots FROM wallets WHERE child_id=$1`, childID).Scan(&w.XP, &w.Carrots)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO wallets (child_id, xp, carrots) VALUES ($1,0,0)`, childID)
		return w, err
	}
	return w, err
}

// AwardPractice credits a practice attempt: full XP and carrots when correct,
// participation XP otherwise.
func (s *Service) AwardPractice(ctx context.Context, childID string, correct bool) (Wallet, error) {
	xp, carrots := XPPerAttempt, 0
	if correct {
		xp, carrots = XPPerCorrect, CarrotsPerCorrect
	}
	return s.credit(ctx, childID, xp, carrots)
}

// AwardAssessment credits a completed assessment: XP equal to the score plus
// a flat carrot bonus for finishing.
func (s *Service) AwardAssessment(ctx context.Context, childID string, scorePercent int) (Wallet, error) {
	return s.credit(ctx, childID, scorePercent, 10)
}

// AssessmentSink adapts the service to the assessment engine's result sink.
func (s *Service) AssessmentSink() assessment.ResultSink {
	return assessment.ResultSinkFunc(func(ctx context.Context, res assessment.Result) error {
		_, err := s.AwardAssessment(ctx, res.ChildID, res.ScorePercent)
		return err
	})
}

func (s *Service) credit(ctx context.Context, childID string, xp, carrots int) (Wallet, error) {
	if _, err := s.Wallet(ctx, childID); err != nil {
		return Wallet{}, err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE wallets SET xp=xp+$1, carrots=carrots+$2 WHERE child_id=$3`,
		xp, carrots, childID)
	if err != nil {
		return Wallet{}, err
	}
	return s.Wallet(ctx, childID)
}

func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, kind, cost FROM shop_items ORDER BY cost, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Kind, &it.Cost); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Purchase debits the item's cost and records the purchase in one
// transaction. The balance check and debit run inside the transaction so two
// concurrent purchases cannot both spend the same carrots.
func (s *Service) Purchase(ctx context.Context, childID, itemID string) (Purchase, Wallet, error) {
	if _, err := s.Wallet(ctx, childID); err != nil {
		return Purchase{}, Wallet{}, err
	}
	var it Item
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, kind, cost FROM shop_items WHERE id=$1`, itemID).
		Scan(&it.ID, &it.Name, &it.Kind, &it.Cost)
	if errors.Is(err, sql.ErrNoRows) {
		return Purchase{}, Wallet{}, ErrItemNotFound
	}
	if err != nil {
		return Purchase{}, Wallet{}, err
	}
	p, err := s.spend(ctx, childID, it, "shop")
	if err != nil {
		return Purchase{}, Wallet{}, err
	}
	w, err := s.Wallet(ctx, childID)
	return p, w, err
}

// OpenMysteryBox debits the fixed box cost and grants a random catalog item.
func (s *Service) OpenMysteryBox(ctx context.Context, childID string) (Item, Wallet, error) {
	if _, err := s.Wallet(ctx, childID); err != nil {
		return Item{}, Wallet{}, err
	}
	items, err := s.ListItems(ctx)
	if err != nil {
		return Item{}, Wallet{}, err
	}
	if len(items) == 0 {
		return Item{}, Wallet{}, ErrItemNotFound
	}
	prize := items[rand.Intn(len(items))]
	boxed := prize
	boxed.Cost = MysteryBoxCost
	if _, err := s.spend(ctx, childID, boxed, "mystery-box"); err != nil {
		return Item{}, Wallet{}, err
	}
	w, err := s.Wallet(ctx, childID)
	return prize, w, err
}

func (s *Service) spend(ctx context.Context, childID string, it Item, source string) (Purchase, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Purchase{}, err
	}
	defer tx.Rollback()

	var carrots int
	if err := tx.QueryRowContext(ctx,
		`SELECT carrots FROM wallets WHERE child_id=$1`, childID).Scan(&carrots); err != nil {
		return Purchase{}, err
	}
	if carrots < it.Cost {
		return Purchase{}, ErrInsufficientCarrots
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET carrots=carrots-$1 WHERE child_id=$2`, it.Cost, childID); err != nil {
		return Purchase{}, err
	}
	p := Purchase{
		ID:          uuid.NewString(),
		ChildID:     childID,
		ItemID:      it.ID,
		Source:      source,
		PurchasedAt: time.Now().Unix(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (id, child_id, item_id, source, purchased_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.ChildID, p.ItemID, p.Source, p.PurchasedAt); err != nil {
		return Purchase{}, err
	}
	if err := tx.Commit(); err != nil {
		return Purchase{}, err
	}
	return p, nil
}

// Inventory lists everything the child owns.
func (s *Service) Inventory(ctx context.Context, childID string) ([]Purchase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, child_id, item_id, source, purchased_at
		 FROM purchases WHERE child_id=$1 ORDER BY purchased_at DESC`, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.ChildID, &p.ItemID, &p.Source, &p.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
