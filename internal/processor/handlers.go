package processor

import (
	"context"
	"encoding/json"

	"github.com/MikeSquared-Agency/reviewlens/internal/hermes"
)

// HandleReviewsIngested is the NATS handler for reviews.ingested. It
// re-analyses the named business so downstream consumers get a fresh
// analysis event and digest.
func (p *Processor) HandleReviewsIngested(subject string, data []byte) {
	var evt hermes.ReviewsIngested
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse ingest event", "subject", subject, "error", err)
		return
	}

	b, ok := p.lookupBusinessRef(evt.Business)
	if !ok {
		p.logger.Warn("ingest event for unknown business", "business", evt.Business)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	p.logger.Info("reviews ingested", "business", b.Slug, "count", evt.Count)

	report, err := p.Analyze(ctx, b.Slug)
	if err != nil {
		p.logger.Error("analysis after ingest failed", "business", b.Slug, "error", err)
		return
	}
	p.postDigest(ctx, b, report.Analysis)
}
