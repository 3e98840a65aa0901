package process

import (
	"context"
	"errors"
	"testing"

	"tweetgraph/internal/graph"
	"tweetgraph/internal/model"
	"tweetgraph/internal/store/tweetstore"
)

const (
	createdT1 = "Mon Jan 02 15:04:05 +0000 2006"
	createdT2 = "Tue Jan 03 15:04:05 +0000 2006"
)

func epoch(t *testing.T, s string) int64 {
	t.Helper()
	ts, err := model.ParseCreatedAt(s)
	if err != nil { t.Fatal(err) }
	return ts
}

type fakeSource struct {
	records []model.TweetRecord
	scans   int
}

func (f *fakeSource) ScanHashtag(ctx context.Context, tag string, fn func(model.TweetRecord) error) error {
	f.scans++
	for _, r := range f.records {
		if err := fn(r); err != nil { return err }
	}
	return nil
}

func TestEmptyTopicRejected(t *testing.T) {
	src := &fakeSource{}
	p := New(src, graph.NewBuilder())
	_, err := p.ProcessTopic(context.Background(), "")
	if !errors.Is(err, ErrEmptyTopic) { t.Fatalf("expected ErrEmptyTopic, got %v", err) }
	if src.scans != 0 { t.Fatalf("store must not be queried for empty topic") }
}

func TestRetweetScenario(t *testing.T) {
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 100}, CreatedAt: createdT1},
		{ID: "2", User: model.User{ID: 200}, CreatedAt: createdT2,
			RetweetedStatus: &model.EmbeddedTweet{User: model.User{ID: 100}}},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	rep, err := p.ProcessTopic(context.Background(), "X")
	if err != nil { t.Fatal(err) }
	if rep.Tweets != 2 || rep.Relations != 1 || len(rep.Anomalies) != 0 {
		t.Fatalf("report: %+v", rep)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 { t.Fatalf("nodes=%d edges=%d", g.NodeCount(), g.EdgeCount()) }
	if n := g.Node(100); *n.AdoptionTime != epoch(t, createdT1) {
		t.Fatalf("node 100 adoption %v", *n.AdoptionTime)
	}
	if n := g.Node(200); *n.AdoptionTime != epoch(t, createdT2) {
		t.Fatalf("node 200 adoption %v", *n.AdoptionTime)
	}
	e := g.Edge(200, 100)
	if e == nil || e.Kinds.Code() != "R" || e.CreationTime != epoch(t, createdT2) {
		t.Fatalf("edge: %+v", e)
	}
}

func TestRetweetDoesNotBackfillOriginalAdoption(t *testing.T) {
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 200}, CreatedAt: createdT2,
			RetweetedStatus: &model.EmbeddedTweet{User: model.User{ID: 100}}},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	if _, err := p.ProcessTopic(context.Background(), "X"); err != nil { t.Fatal(err) }
	if n := g.Node(100); n == nil || n.AdoptionTime != nil {
		t.Fatalf("original author must have no adoption time, got %+v", n)
	}
}

func TestPropagatedMentionDedup(t *testing.T) {
	propagated := model.Mention{ID: "300", ScreenName: "x"}
	fresh := model.Mention{ID: "400", ScreenName: "y"}
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 200}, CreatedAt: createdT1,
			Entities: model.Entities{UserMentions: []model.Mention{propagated, fresh}},
			RetweetedStatus: &model.EmbeddedTweet{
				User:     model.User{ID: 100},
				Entities: model.Entities{UserMentions: []model.Mention{propagated}},
			}},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	rep, err := p.ProcessTopic(context.Background(), "X")
	if err != nil { t.Fatal(err) }
	if g.Edge(200, 300) != nil {
		t.Fatalf("propagated mention must not create an edge")
	}
	if e := g.Edge(200, 400); e == nil || e.Kinds.Code() != "M" {
		t.Fatalf("independent mention edge missing: %+v", e)
	}
	if e := g.Edge(200, 100); e == nil || e.Kinds.Code() != "R" {
		t.Fatalf("retweet edge missing: %+v", e)
	}
	if rep.Relations != 2 { t.Fatalf("expected 2 relations, got %d", rep.Relations) }
}

func TestMentionDedupIsStructuralNotByID(t *testing.T) {
	// Same user id but a different entity fragment: not a verbatim
	// match, so the mention still counts.
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 200}, CreatedAt: createdT1,
			Entities: model.Entities{UserMentions: []model.Mention{{ID: "300", ScreenName: "renamed"}}},
			RetweetedStatus: &model.EmbeddedTweet{
				User:     model.User{ID: 100},
				Entities: model.Entities{UserMentions: []model.Mention{{ID: "300", ScreenName: "original"}}},
			}},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	if _, err := p.ProcessTopic(context.Background(), "X"); err != nil { t.Fatal(err) }
	if e := g.Edge(200, 300); e == nil || !e.Kinds.Has(graph.Mention) {
		t.Fatalf("structurally distinct mention should create an edge, got %+v", e)
	}
}

func TestMalformedMentionTolerance(t *testing.T) {
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 200}, CreatedAt: createdT1,
			Entities: model.Entities{UserMentions: []model.Mention{
				{ID: "", ScreenName: "ghost"},
				{ID: "300", ScreenName: "ok"},
			}}},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	rep, err := p.ProcessTopic(context.Background(), "X")
	if err != nil { t.Fatal(err) }
	if len(rep.Anomalies) != 1 { t.Fatalf("expected exactly one anomaly, got %+v", rep.Anomalies) }
	if e := g.Edge(200, 300); e == nil || e.Kinds.Code() != "M" {
		t.Fatalf("valid mention edge missing: %+v", e)
	}
}

func TestSignalFreeRecordAddsAuthorOnly(t *testing.T) {
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 100}, CreatedAt: createdT1},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	if _, err := p.ProcessTopic(context.Background(), "X"); err != nil { t.Fatal(err) }
	if g.NodeCount() != 1 || g.EdgeCount() != 0 {
		t.Fatalf("nodes=%d edges=%d", g.NodeCount(), g.EdgeCount())
	}
}

func TestRetweetOfQuoteCarriesBothEdges(t *testing.T) {
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 200}, CreatedAt: createdT1,
			RetweetedStatus: &model.EmbeddedTweet{User: model.User{ID: 100}},
			QuotedStatus:    &model.EmbeddedTweet{User: model.User{ID: 300}}},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	if _, err := p.ProcessTopic(context.Background(), "X"); err != nil { t.Fatal(err) }
	if e := g.Edge(200, 100); e == nil || e.Kinds.Code() != "R" { t.Fatalf("retweet edge: %+v", e) }
	if e := g.Edge(200, 300); e == nil || e.Kinds.Code() != "Q" { t.Fatalf("quote edge: %+v", e) }
}

func TestReplyBranch(t *testing.T) {
	target := int64(100)
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 200}, CreatedAt: createdT1, InReplyToUserID: &target},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	if _, err := p.ProcessTopic(context.Background(), "X"); err != nil { t.Fatal(err) }
	if e := g.Edge(200, 100); e == nil || e.Kinds.Code() != "C" {
		t.Fatalf("reply edge: %+v", e)
	}
}

func TestBadCreatedAtSkipsRecord(t *testing.T) {
	src := &fakeSource{records: []model.TweetRecord{
		{ID: "1", User: model.User{ID: 100}, CreatedAt: "not a date"},
		{ID: "2", User: model.User{ID: 200}, CreatedAt: createdT1},
	}}
	g := graph.NewBuilder()
	p := New(src, g)
	rep, err := p.ProcessTopic(context.Background(), "X")
	if err != nil { t.Fatal(err) }
	if rep.Tweets != 1 || len(rep.Anomalies) != 1 {
		t.Fatalf("report: %+v", rep)
	}
	if g.Node(100) != nil { t.Fatalf("skipped record must not add its author") }
}

func TestProcessTopicFromStore(t *testing.T) {
	db, err := tweetstore.Open(":memory:")
	if err != nil { t.Fatal(err) }
	defer db.Close()
	ctx := context.Background()
	tag := func(r model.TweetRecord, tags ...string) model.TweetRecord {
		for _, tg := range tags {
			r.Entities.Hashtags = append(r.Entities.Hashtags, model.Hashtag{Text: tg})
		}
		return r
	}
	_ = db.Put(ctx, tag(model.TweetRecord{ID: "1", User: model.User{ID: 100}, CreatedAt: createdT1}, "X"))
	_ = db.Put(ctx, tag(model.TweetRecord{ID: "2", User: model.User{ID: 200}, CreatedAt: createdT2,
		RetweetedStatus: &model.EmbeddedTweet{User: model.User{ID: 100}}}, "X"))
	_ = db.Put(ctx, tag(model.TweetRecord{ID: "3", User: model.User{ID: 999}, CreatedAt: createdT1}, "other"))
	g := graph.NewBuilder()
	p := New(db, g)
	rep, err := p.ProcessTopic(ctx, "X")
	if err != nil { t.Fatal(err) }
	if rep.Tweets != 2 { t.Fatalf("expected 2 matching tweets, got %d", rep.Tweets) }
	if g.Node(999) != nil { t.Fatalf("other topic leaked into graph") }
	if e := g.Edge(200, 100); e == nil || e.Kinds.Code() != "R" || e.CreationTime != epoch(t, createdT2) {
		t.Fatalf("edge: %+v", e)
	}
}
