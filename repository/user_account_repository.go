package repository

import (
	"context"
	"fmt"

	"tokenengine/database"
	"tokenengine/domain/entities"
	"tokenengine/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

const userAccountColumns = `id, daily_tokens, daily_limit, monthly_total, monthly_used,
		total_used_all_time, points, referral_code, daily_reset_at, monthly_reset_at,
		created_at, updated_at`

// userAccountRepository implements the UserAccountRepository interface
type userAccountRepository struct {
	q Queryable
}

// NewUserAccountRepository creates a new account repository over a pool
func NewUserAccountRepository(db *database.DB) interfaces.UserAccountRepository {
	return &userAccountRepository{q: db.Pool}
}

func newUserAccountRepository(tx Queryable) interfaces.UserAccountRepository {
	return &userAccountRepository{q: tx}
}

func scanUserAccount(row pgx.Row) (*entities.UserAccount, error) {
	var account entities.UserAccount
	err := row.Scan(
		&account.ID,
		&account.DailyTokens,
		&account.DailyLimit,
		&account.MonthlyTotal,
		&account.MonthlyUsed,
		&account.TotalUsedAllTime,
		&account.Points,
		&account.ReferralCode,
		&account.DailyResetAt,
		&account.MonthlyResetAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByID retrieves an account by user ID, or nil when absent. Inside a
// transaction the row lock serializes concurrent debits on the same user.
func (r *userAccountRepository) GetByID(ctx context.Context, userID string) (*entities.UserAccount, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_accounts
		WHERE id = $1
		FOR UPDATE`, userAccountColumns)

	account, err := scanUserAccount(r.q.QueryRow(ctx, query, userID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", userID, err)
	}
	return account, nil
}

// GetByReferralCode retrieves the account owning a referral code, or nil
func (r *userAccountRepository) GetByReferralCode(ctx context.Context, code string) (*entities.UserAccount, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_accounts
		WHERE referral_code = $1`, userAccountColumns)

	account, err := scanUserAccount(r.q.QueryRow(ctx, query, code))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by referral code: %w", err)
	}
	return account, nil
}

// Create inserts a freshly provisioned account
func (r *userAccountRepository) Create(ctx context.Context, account *entities.UserAccount) error {
	query := `
		INSERT INTO user_accounts (id, daily_tokens, daily_limit, monthly_total, monthly_used,
			total_used_all_time, points, referral_code, daily_reset_at, monthly_reset_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.q.QueryRow(ctx, query,
		account.ID,
		account.DailyTokens,
		account.DailyLimit,
		account.MonthlyTotal,
		account.MonthlyUsed,
		account.TotalUsedAllTime,
		account.Points,
		account.ReferralCode,
		account.DailyResetAt,
		account.MonthlyResetAt,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.ID, err)
	}
	return nil
}

// Update persists all mutable counters of the account
func (r *userAccountRepository) Update(ctx context.Context, account *entities.UserAccount) error {
	query := `
		UPDATE user_accounts
		SET daily_tokens = $2,
			daily_limit = $3,
			monthly_total = $4,
			monthly_used = $5,
			total_used_all_time = $6,
			points = $7,
			daily_reset_at = $8,
			monthly_reset_at = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.q.QueryRow(ctx, query,
		account.ID,
		account.DailyTokens,
		account.DailyLimit,
		account.MonthlyTotal,
		account.MonthlyUsed,
		account.TotalUsedAllTime,
		account.Points,
		account.DailyResetAt,
		account.MonthlyResetAt,
	).Scan(&account.UpdatedAt)

	if err == pgx.ErrNoRows {
		return fmt.Errorf("account %s not found", account.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.ID, err)
	}
	return nil
}

// GetAll returns every account
func (r *userAccountRepository) GetAll(ctx context.Context) ([]*entities.UserAccount, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_accounts
		ORDER BY created_at`, userAccountColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entities.UserAccount
	for rows.Next() {
		account, err := scanUserAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
