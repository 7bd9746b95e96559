package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/kakeibo/internal/calculator"
	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
)

// transactionsCache is the local cache entry holding the selected group's list.
const transactionsCache = "transactions"

type cachedTransactions struct {
	GroupID      string                `json:"groupId"`
	Transactions []*models.Transaction `json:"transactions"`
}

// AddTransaction records an expense against the selected group. A missing
// or stale selection falls back to the private group, which is created if
// it is missing. An empty title is stored as the default title.
func (l *Ledger) AddTransaction(ctx context.Context, amount decimal.Decimal, title string) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = models.DefaultTransactionTitle
	}
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	g, err := l.SelectedGroup(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := l.repo.Transactions.Create(ctx, &models.Transaction{
		Title:   title,
		Amount:  amount,
		Date:    l.now().UTC().Truncate(time.Second),
		UserID:  userID,
		GroupID: g.ID,
	})
	if err != nil {
		return nil, l.remote("create transaction", err, "group_id", g.ID)
	}
	l.invalidateTransactions(ctx)
	l.logger.Info("Transaction added", "transaction_id", tx.ID, "group_id", g.ID, "amount", amount.String())
	return tx, nil
}

// Transactions lists the selected group's transactions, newest first.
// Cached lists are served until the selection changes or refresh is set.
func (l *Ledger) Transactions(ctx context.Context, refresh bool) ([]*models.Transaction, error) {
	g, err := l.SelectedGroup(ctx)
	if err != nil {
		return nil, err
	}

	if !refresh {
		if txs, ok := l.state.Transactions(); ok {
			return txs, nil
		}
		var cached cachedTransactions
		ok, err := l.session.Cache(ctx, transactionsCache, &cached)
		if err != nil {
			l.logger.Warn("Failed to read transaction cache", "error", err)
		}
		if ok && cached.GroupID == g.ID {
			l.state.SetTransactions(g.ID, cached.Transactions)
			return cached.Transactions, nil
		}
	}

	txs, err := l.repo.Transactions.ListByGroup(ctx, g.ID)
	if err != nil {
		return nil, l.remote("list transactions", err, "group_id", g.ID)
	}
	l.state.SetTransactions(g.ID, txs)
	if err := l.session.SetCache(ctx, transactionsCache, cachedTransactions{GroupID: g.ID, Transactions: txs}); err != nil {
		l.logger.Warn("Failed to write transaction cache", "error", err)
	}
	return txs, nil
}

// DeleteTransaction deletes a transaction of a group the signed-in user belongs to.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return ErrTransactionNotFound
	}
	tx, err := l.repo.Transactions.Get(ctx, id)
	if err != nil {
		return l.notFoundOr("get transaction", err, ErrTransactionNotFound, "transaction_id", id)
	}

	g, err := l.group(ctx, tx.GroupID)
	switch {
	case errors.Is(err, ErrGroupNotFound):
		// Orphaned by an unfinished cascade; only its author may remove it.
		if tx.UserID != userID {
			return ErrNotMember
		}
	case err != nil:
		return err
	case !isMember(g, userID):
		return ErrNotMember
	}

	if err := l.repo.Transactions.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return l.remote("delete transaction", err, "transaction_id", id)
	}
	l.invalidateTransactions(ctx)
	l.logger.Info("Transaction deleted", "transaction_id", id, "group_id", tx.GroupID)
	return nil
}

// Summary totals the selected group's transactions by day and month.
func (l *Ledger) Summary(ctx context.Context) (calculator.Summary, error) {
	txs, err := l.Transactions(ctx, false)
	if err != nil {
		return calculator.Summary{}, err
	}
	return calculator.Summarize(entries(txs), l.now(), l.location), nil
}

// Balances splits the selected group's spending equally among its members.
func (l *Ledger) Balances(ctx context.Context) ([]calculator.MemberBalance, []calculator.DebtEdge, error) {
	g, err := l.SelectedGroup(ctx)
	if err != nil {
		return nil, nil, err
	}
	txs, err := l.Transactions(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	balances, edges := calculator.CalculateGroupBalances(entries(txs), g.Members)
	return balances, edges, nil
}

func entries(txs []*models.Transaction) []calculator.Entry {
	out := make([]calculator.Entry, 0, len(txs))
	for _, tx := range txs {
		out = append(out, calculator.Entry{Amount: tx.Amount, Date: tx.Date, UserID: tx.UserID})
	}
	return out
}

func (l *Ledger) invalidateTransactions(ctx context.Context) {
	l.state.InvalidateTransactions()
	if err := l.session.InvalidateCache(ctx, transactionsCache); err != nil {
		l.logger.Warn("Failed to clear transaction cache", "error", err)
	}
}
