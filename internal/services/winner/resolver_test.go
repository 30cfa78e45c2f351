package winner

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"auctionhouse/internal/models"
	"auctionhouse/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	getItemQ     = regexp.QuoteMeta(`FROM items WHERE id = $1`)
	highestBidQ  = regexp.QuoteMeta(`ORDER BY amount DESC LIMIT 1`)
	setWinnerQ   = regexp.QuoteMeta(`UPDATE items SET winner_id = $2 WHERE id = $1`)
	getUserQ     = regexp.QuoteMeta(`FROM users WHERE id = $1`)
	insertMsgQ   = regexp.QuoteMeta(`INSERT INTO messages`)
	markContactQ = regexp.QuoteMeta(`UPDATE items SET winner_notified = TRUE`)
)

var itemCols = []string{"id", "title", "category_code", "starting_price", "current_price",
	"starts_at", "ends_at", "active", "winner_id", "winner_notified", "winner_contacted"}

var userCols = []string{"id", "email", "nickname", "password_hash", "email_verified",
	"is_admin", "outbid_notifications_enabled", "win_notifications_enabled", "created_at"}

type recordingNotifier struct {
	winners []string
}

func (r *recordingNotifier) NotifyWinner(_ context.Context, _ models.Item, winner models.User) {
	r.winners = append(r.winners, winner.ID)
}

func newResolverWithMock(t *testing.T) (*Resolver, sqlmock.Sqlmock, *sql.DB, *recordingNotifier, time.Time) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	notifier := &recordingNotifier{}
	r := &Resolver{
		store:    repository.NewStore(db),
		notifier: notifier,
		now:      func() time.Time { return now },
	}
	return r, mock, db, notifier, now
}

func endedItemRows(now time.Time, winnerID string, notified bool) *sqlmock.Rows {
	return sqlmock.NewRows(itemCols).AddRow(
		"item-1", "Antique Clock", "COLLECTIBLES", "10.00", "15.00",
		now.Add(-48*time.Hour), now.Add(-time.Hour), true, winnerID, notified, nil)
}

func TestResolve_PicksHighestBidder(t *testing.T) {
	r, mock, db, _, now := newResolverWithMock(t)
	defer db.Close()

	// Bids were 10, 15 and 12; the 15 leads the ledger.
	top := sqlmock.NewRows([]string{"id", "item_id", "bidder_id", "amount", "created_at"}).
		AddRow("b-2", "item-1", "u2", "15.00", now.Add(-2*time.Hour))

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "", false))
	mock.ExpectQuery(highestBidQ).WithArgs("item-1").WillReturnRows(top)
	mock.ExpectExec(setWinnerQ).WithArgs("item-1", "u2").WillReturnResult(sqlmock.NewResult(0, 1))

	winnerID, err := r.Resolve(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "u2", winnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_NoBidsLeavesUnsold(t *testing.T) {
	r, mock, db, _, now := newResolverWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "", false))
	mock.ExpectQuery(highestBidQ).WithArgs("item-1").WillReturnError(sql.ErrNoRows)

	winnerID, err := r.Resolve(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Empty(t, winnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_AlreadyResolvedIsIdempotent(t *testing.T) {
	r, mock, db, _, now := newResolverWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "u7", false))

	winnerID, err := r.Resolve(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "u7", winnerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResolve_StillOpen(t *testing.T) {
	r, mock, db, _, now := newResolverWithMock(t)
	defer db.Close()

	open := sqlmock.NewRows(itemCols).AddRow(
		"item-1", "Antique Clock", "COLLECTIBLES", "10.00", "15.00",
		now.Add(-time.Hour), now.Add(time.Hour), true, "", false, nil)
	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(open)

	_, err := r.Resolve(context.Background(), "item-1")
	require.ErrorIs(t, err, ErrAuctionStillOpen)
}

func TestResolve_ItemMissing(t *testing.T) {
	r, mock, db, _, _ := newResolverWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getItemQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := r.Resolve(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestOverride_RequiresClosedAuction(t *testing.T) {
	r, mock, db, _, now := newResolverWithMock(t)
	defer db.Close()

	open := sqlmock.NewRows(itemCols).AddRow(
		"item-1", "Antique Clock", "COLLECTIBLES", "10.00", "15.00",
		now.Add(-time.Hour), now.Add(time.Hour), true, "", false, nil)
	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(open)

	err := r.Override(context.Background(), "item-1", "u9")
	require.ErrorIs(t, err, ErrAuctionStillOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverride_AssignsChosenUser(t *testing.T) {
	r, mock, db, _, now := newResolverWithMock(t)
	defer db.Close()

	user := sqlmock.NewRows(userCols).
		AddRow("u9", "u9@example.com", "niner", "x", true, false, true, true, now)

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "", false))
	mock.ExpectQuery(getUserQ).WithArgs("u9").WillReturnRows(user)
	mock.ExpectExec(setWinnerQ).WithArgs("item-1", "u9").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.Override(context.Background(), "item-1", "u9"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOverride_UnknownUser(t *testing.T) {
	r, mock, db, _, now := newResolverWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "", false))
	mock.ExpectQuery(getUserQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	err := r.Override(context.Background(), "item-1", "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestContactWinners_NotifiesOnce(t *testing.T) {
	r, mock, db, notifier, now := newResolverWithMock(t)
	defer db.Close()

	user := sqlmock.NewRows(userCols).
		AddRow("u2", "u2@example.com", "bob", "x", true, false, true, true, now)

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "u2", false))
	mock.ExpectQuery(getUserQ).WithArgs("u2").WillReturnRows(user)
	mock.ExpectExec(insertMsgQ).
		WithArgs(sqlmock.AnyArg(), "admin-1", "u2", sqlmock.AnyArg(), false, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(markContactQ).WithArgs("item-1", now).WillReturnResult(sqlmock.NewResult(0, 1))

	contacted, err := r.ContactWinners(context.Background(), []string{"item-1"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, contacted)
	assert.Equal(t, []string{"u2"}, notifier.winners)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Already-notified items and items without a winner are skipped entirely.
func TestContactWinners_SkipsNotifiedAndUnsold(t *testing.T) {
	r, mock, db, notifier, now := newResolverWithMock(t)
	defer db.Close()

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "u2", true))
	mock.ExpectQuery(getItemQ).WithArgs("item-2").WillReturnRows(endedItemRows(now, "", false))
	mock.ExpectQuery(getItemQ).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	contacted, err := r.ContactWinners(context.Background(), []string{"item-1", "item-2", "ghost"}, "admin-1")
	require.NoError(t, err)
	assert.Zero(t, contacted)
	assert.Empty(t, notifier.winners)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Email preference off: the in-app message still lands, only the mail is
// suppressed.
func TestContactWinners_RespectsEmailPreference(t *testing.T) {
	r, mock, db, notifier, now := newResolverWithMock(t)
	defer db.Close()

	user := sqlmock.NewRows(userCols).
		AddRow("u2", "u2@example.com", "bob", "x", true, false, true, false, now)

	mock.ExpectQuery(getItemQ).WithArgs("item-1").WillReturnRows(endedItemRows(now, "u2", false))
	mock.ExpectQuery(getUserQ).WithArgs("u2").WillReturnRows(user)
	mock.ExpectExec(insertMsgQ).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(markContactQ).WillReturnResult(sqlmock.NewResult(0, 1))

	contacted, err := r.ContactWinners(context.Background(), []string{"item-1"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, contacted)
	assert.Empty(t, notifier.winners)
	require.NoError(t, mock.ExpectationsWereMet())
}
