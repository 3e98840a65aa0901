package tweetstore

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "modernc.org/sqlite"

	"tweetgraph/internal/model"
)

// DB wraps the SQLite database holding collected tweet records. The
// pipeline only reads it; Put exists for tests and out-of-band loading.
type DB struct{ sql *sql.DB }

func Open(path string) (*DB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil { return nil, err }
	if _, err := d.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil { return nil, err }
	db := &DB{sql: d}
	if err := db.migrate(); err != nil { _ = d.Close(); return nil, err }
	return db, nil
}

func (d *DB) Close() error { return d.sql.Close() }

func (d *DB) migrate() error {
	_, err := d.sql.Exec(`
	CREATE TABLE IF NOT EXISTS tweets (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  tweet_id TEXT,
	  payload TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tweet_hashtags (
	  tweet_id INTEGER NOT NULL REFERENCES tweets(id),
	  text TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_hashtags_text ON tweet_hashtags(text);
	`)
	return err
}

// Put stores a record and indexes its top-level hashtag texts. Only
// top-level hashtags participate in topic filtering; embedded
// retweet/quote hashtags belong to the original tweet's record.
func (d *DB) Put(ctx context.Context, rec model.TweetRecord) error {
	pb, err := json.Marshal(rec)
	if err != nil { return err }
	res, err := d.sql.ExecContext(ctx, `INSERT INTO tweets(tweet_id, payload) VALUES(?,?)`, rec.ID, string(pb))
	if err != nil { return err }
	rowID, err := res.LastInsertId()
	if err != nil { return err }
	for _, h := range rec.Entities.Hashtags {
		if _, err := d.sql.ExecContext(ctx, `INSERT INTO tweet_hashtags(tweet_id, text) VALUES(?,?)`, rowID, h.Text); err != nil {
			return err
		}
	}
	return nil
}

// ScanHashtag streams every record whose hashtag set contains tag,
// matched exactly (case-sensitive, BINARY collation), in insertion
// order. An error from fn aborts the scan and is returned.
func (d *DB) ScanHashtag(ctx context.Context, tag string, fn func(model.TweetRecord) error) error {
	rows, err := d.sql.QueryContext(ctx, `
	SELECT payload FROM tweets
	WHERE id IN (SELECT tweet_id FROM tweet_hashtags WHERE text = ?)
	ORDER BY id`, tag)
	if err != nil { return err }
	defer rows.Close()
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil { return err }
		var rec model.TweetRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil { return err }
		if err := fn(rec); err != nil { return err }
	}
	return rows.Err()
}

// Count returns the total number of stored records.
func (d *DB) Count(ctx context.Context) (int64, error) {
	row := d.sql.QueryRowContext(ctx, `SELECT COUNT(*) FROM tweets`)
	var n int64
	if err := row.Scan(&n); err != nil { return 0, err }
	return n, nil
}
