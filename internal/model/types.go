package model

import (
	"strconv"
	"time"
)

// CreatedAtLayout is the textual timestamp format tweets are stored
// with, e.g. "Wed Aug 27 13:08:45 +0000 2008".
const CreatedAtLayout = time.RubyDate

// ParseCreatedAt converts a stored created_at value to epoch seconds.
func ParseCreatedAt(s string) (int64, error) {
	t, err := time.Parse(CreatedAtLayout, s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// User represents the subset of author fields the pipeline uses.
type User struct {
	ID         int64  `json:"id"`
	ScreenName string `json:"screen_name,omitempty"`
}

// Hashtag is one entry of a tweet's hashtag entity list.
type Hashtag struct {
	Text string `json:"text"`
}

// Mention is one entry of a tweet's user-mention entity list. The id is
// kept as the raw string from the payload: real records carry absent or
// malformed ids, and the pipeline parses them per mention. The struct
// is comparable so propagated-mention dedup can match entries verbatim.
type Mention struct {
	ID         string `json:"id_str"`
	ScreenName string `json:"screen_name,omitempty"`
}

// ParseID attempts to parse the mention's user id.
func (m Mention) ParseID() (int64, error) {
	return strconv.ParseInt(m.ID, 10, 64)
}

// Entities holds the structured entities attached to a tweet.
type Entities struct {
	Hashtags     []Hashtag `json:"hashtags,omitempty"`
	UserMentions []Mention `json:"user_mentions,omitempty"`
}

// EmbeddedTweet is a retweeted or quoted sub-record: the original
// tweet's author plus its own entity lists.
type EmbeddedTweet struct {
	User     User     `json:"user"`
	Entities Entities `json:"entities"`
}

// TweetRecord mirrors the stored JSON payload for one tweet. A record
// may carry both RetweetedStatus and QuotedStatus (a retweet of a
// quote, and vice versa).
type TweetRecord struct {
	ID              string         `json:"id_str"`
	User            User           `json:"user"`
	CreatedAt       string         `json:"created_at"`
	Entities        Entities       `json:"entities"`
	RetweetedStatus *EmbeddedTweet `json:"retweeted_status,omitempty"`
	QuotedStatus    *EmbeddedTweet `json:"quoted_status,omitempty"`
	InReplyToUserID *int64         `json:"in_reply_to_user_id,omitempty"`
}
