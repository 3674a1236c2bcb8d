package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/opsdash/internal/client/listing"
	"github.com/dmitrijs2005/opsdash/internal/client/models"
	"github.com/dmitrijs2005/opsdash/internal/remote"
)

// EmailPage is one server-side page of email_prio_logs.
type EmailPage struct {
	Items  []models.EmailLog  `json:"items"`
	Window listing.PageWindow `json:"window"`
}

type EmailService struct {
	store remote.Store
}

func NewEmailService(store remote.Store) *EmailService {
	return &EmailService{store: store}
}

// Page returns page of the emails whose subject contains term (ignoring
// case), newest first, together with the exact match count. page is clamped
// to the pages that exist, so the window always names the rows returned.
func (s *EmailService) Page(ctx context.Context, term string, page, pageSize int) (EmailPage, error) {
	base := remote.From(remote.EmailPrioLogs)
	if term = strings.TrimSpace(term); term != "" {
		base = base.Where(remote.ILikeContains("email_subject", term))
	}

	total, err := s.store.Count(ctx, base)
	if err != nil {
		return EmailPage{}, err
	}
	window := listing.NewWindow(total, page, pageSize)

	recs, err := s.store.Select(ctx, base.OrderBy("created_at", false).WithPage(window.CurrentPage, pageSize))
	if err != nil {
		return EmailPage{}, err
	}

	items := make([]models.EmailLog, 0, len(recs))
	for _, rec := range recs {
		e, err := models.EmailLogFromRecord(rec)
		if err != nil {
			return EmailPage{}, err
		}
		items = append(items, e)
	}
	return EmailPage{Items: items, Window: window}, nil
}
