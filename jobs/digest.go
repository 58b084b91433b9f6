package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stockwatch/stockwatch/logger"
	"github.com/stockwatch/stockwatch/mailer"
	"github.com/stockwatch/stockwatch/store"
)

// digestSubject is the subject line of the daily digest email.
const digestSubject = "Daily Stocks Values"

// DigestJob emails every user with favourites the latest values of their
// favourite stocks.
type DigestJob struct {
	users  *store.UserStore
	stocks *store.StockStore
	sender mailer.Sender
	log    *logger.Logger
}

// NewDigestJob creates the digest job.
func NewDigestJob(users *store.UserStore, stocks *store.StockStore, sender mailer.Sender, log *logger.Logger) *DigestJob {
	return &DigestJob{
		users:  users,
		stocks: stocks,
		sender: sender,
		log:    log.WithComponent("digest_job"),
	}
}

// Name implements Job.
func (j *DigestJob) Name() string { return "email_digest" }

// Run sends one email per user. Users whose favourites have no stored
// values yet are skipped. A failed delivery is logged and does not stop
// the remaining users; the job fails only when every delivery failed.
func (j *DigestJob) Run(ctx context.Context) error {
	recipients, err := j.users.UsersWithFavourites(ctx)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		j.log.Info("No digest recipients")
		return nil
	}

	sent, failed := 0, 0
	for _, recipient := range recipients {
		quotes, err := j.stocks.QuotesForUser(ctx, recipient.UserID)
		if err != nil {
			j.log.Error("Digest lookup failed", map[string]interface{}{
				"user_id": recipient.UserID,
				"error":   err.Error(),
			})
			failed++
			continue
		}
		if len(quotes) == 0 {
			continue
		}

		body, err := json.MarshalIndent(quotes, "", "  ")
		if err != nil {
			failed++
			continue
		}
		if err := j.sender.Send(ctx, recipient.Email, digestSubject, string(body)); err != nil {
			j.log.Error("Digest delivery failed", map[string]interface{}{
				"user_id": recipient.UserID,
				"error":   err.Error(),
			})
			failed++
			continue
		}
		sent++
	}

	if sent == 0 && failed > 0 {
		return fmt.Errorf("digest: all %d deliveries failed", failed)
	}
	j.log.Info("Digest sent", map[string]interface{}{
		"sent":   sent,
		"failed": failed,
	})
	return nil
}

var _ Job = (*DigestJob)(nil)
