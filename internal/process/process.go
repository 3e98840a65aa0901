package process

import (
	"context"
	"errors"

	"tweetgraph/internal/graph"
	"tweetgraph/internal/logging"
	"tweetgraph/internal/metrics"
	"tweetgraph/internal/model"
)

// ErrEmptyTopic is returned by ProcessTopic before any store access
// when the topic is empty.
var ErrEmptyTopic = errors.New("topic must not be empty")

// TweetSource yields stored records matching an exact hashtag.
// Satisfied by tweetstore.DB.
type TweetSource interface {
	ScanHashtag(ctx context.Context, tag string, fn func(model.TweetRecord) error) error
}

// Anomaly is a recoverable problem encountered in one record. It is
// logged when it occurs and surfaced in the Report.
type Anomaly struct {
	TweetID string
	Reason  string
}

// Report summarizes one topic extraction.
type Report struct {
	Tweets    int
	Relations int
	Anomalies []Anomaly
}

// Processor drives the graph builder from stored tweet records.
type Processor struct {
	source TweetSource
	graph  *graph.Builder
}

func New(source TweetSource, g *graph.Builder) *Processor {
	return &Processor{source: source, graph: g}
}

// ProcessTopic scans every record tagged with topic and records the
// interactions it carries: retweet, quote, mention, reply. Records are
// processed best-effort field by field; malformed mention ids are
// logged and skipped without aborting the scan.
func (p *Processor) ProcessTopic(ctx context.Context, topic string) (Report, error) {
	if topic == "" {
		return Report{}, ErrEmptyTopic
	}
	var rep Report
	err := p.source.ScanHashtag(ctx, topic, func(rec model.TweetRecord) error {
		return p.processRecord(rec, &rep)
	})
	return rep, err
}

func (p *Processor) processRecord(rec model.TweetRecord, rep *Report) error {
	createdAt, err := model.ParseCreatedAt(rec.CreatedAt)
	if err != nil {
		rep.Anomalies = append(rep.Anomalies, Anomaly{TweetID: rec.ID, Reason: "unparseable created_at " + rec.CreatedAt})
		logging.Error("bad_created_at", map[string]any{"tweet": rec.ID, "created_at": rec.CreatedAt})
		return nil
	}
	rep.Tweets++
	metrics.TweetsProcessed.Inc()
	author := rec.User.ID
	p.graph.AddUserAt(author, createdAt)

	// A record can carry both: a retweet of a quote has retweeted_status
	// and quoted_status at once.
	var retweetMentions, quoteMentions []model.Mention
	if rt := rec.RetweetedStatus; rt != nil {
		// The adoption time belongs to the retweeting act; the original
		// author is registered without one.
		p.graph.AddUser(rt.User.ID)
		if err := p.relate(author, rt.User.ID, graph.Retweet, createdAt, rep); err != nil {
			return err
		}
		retweetMentions = rt.Entities.UserMentions
	}
	if qt := rec.QuotedStatus; qt != nil {
		p.graph.AddUser(qt.User.ID)
		if err := p.relate(author, qt.User.ID, graph.Quote, createdAt, rep); err != nil {
			return err
		}
		quoteMentions = qt.Entities.UserMentions
	}
	for _, m := range rec.Entities.UserMentions {
		id, err := m.ParseID()
		if err != nil {
			rep.Anomalies = append(rep.Anomalies, Anomaly{TweetID: rec.ID, Reason: "malformed mention id " + m.ID})
			metrics.MalformedMentions.Inc()
			logging.Error("malformed_mention", map[string]any{"tweet": rec.ID, "mention_id": m.ID})
			continue
		}
		// Mentions surfacing inside an embedded retweet/quote belong to
		// the original author's tweet; matched verbatim, not by id.
		if containsMention(retweetMentions, m) || containsMention(quoteMentions, m) {
			continue
		}
		p.graph.AddUser(id)
		if err := p.relate(author, id, graph.Mention, createdAt, rep); err != nil {
			return err
		}
	}
	if rec.InReplyToUserID != nil {
		p.graph.AddUser(*rec.InReplyToUserID)
		if err := p.relate(author, *rec.InReplyToUserID, graph.Reply, createdAt, rep); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) relate(source, target int64, kind graph.Kind, ts int64, rep *Report) error {
	if err := p.graph.AddRelation(source, target, kind, ts); err != nil {
		return err
	}
	rep.Relations++
	metrics.IncRelation(kind.Code())
	return nil
}

func containsMention(list []model.Mention, m model.Mention) bool {
	for _, o := range list {
		if o == m {
			return true
		}
	}
	return false
}
