// Package seed loads demo data into the database, either from the CSV export
// the generator produces or from gofakeit factories.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"warbler/internal/credentials"
	"warbler/internal/middleware"
	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// File names expected inside a CSV directory.
const (
	UsersFile    = "users.csv"
	MessagesFile = "messages.csv"
	FollowsFile  = "follows.csv"
)

const batchSize = 200

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// CSVSource holds the three tables of a CSV export.
type CSVSource struct {
	Users    io.Reader
	Messages io.Reader
	Follows  io.Reader
}

// CSVOptions control LoadCSV.
type CSVOptions struct {
	// Clean removes every existing row before loading.
	Clean bool
	// HeaderImageURL is applied to every user once the rows are in.
	HeaderImageURL string
}

// Summary counts what a seeding run inserted.
type Summary struct {
	Users    int
	Messages int
	Follows  int
	Likes    int
}

// OpenCSVDir opens users.csv, messages.csv and follows.csv under dir. The
// returned close func releases all three files.
func OpenCSVDir(dir string) (CSVSource, func() error, error) {
	var files []*os.File
	closeAll := func() error {
		var errs []error
		for _, f := range files {
			errs = append(errs, f.Close())
		}
		return errors.Join(errs...)
	}

	open := func(name string) (io.Reader, error) {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		files = append(files, f)
		return f, nil
	}

	var src CSVSource
	var err error
	if src.Users, err = open(UsersFile); err != nil {
		_ = closeAll()
		return CSVSource{}, nil, err
	}
	if src.Messages, err = open(MessagesFile); err != nil {
		_ = closeAll()
		return CSVSource{}, nil, err
	}
	if src.Follows, err = open(FollowsFile); err != nil {
		_ = closeAll()
		return CSVSource{}, nil, err
	}
	return src, closeAll, nil
}

// LoadCSV inserts users, then messages, then follows in one transaction.
// user_id columns refer to the 1-based row of the user in users.csv, which is
// also the id the user gets in an empty database.
func LoadCSV(ctx context.Context, db *gorm.DB, src CSVSource, opts CSVOptions) (*Summary, error) {
	users, err := readUsers(src.Users)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if opts.Clean {
			if err := ClearAll(tx); err != nil {
				return err
			}
		}

		if len(users) > 0 {
			if err := tx.CreateInBatches(users, batchSize).Error; err != nil {
				return fmt.Errorf("insert users: %w", err)
			}
		}
		ids := make([]uint, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		summary.Users = len(users)

		messages, err := readMessages(src.Messages, ids)
		if err != nil {
			return err
		}
		if len(messages) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(messages, batchSize).Error; err != nil {
				return fmt.Errorf("insert messages: %w", err)
			}
		}
		summary.Messages = len(messages)

		follows, err := readFollows(src.Follows, ids)
		if err != nil {
			return err
		}
		if len(follows) > 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Omit(clause.Associations).
				CreateInBatches(follows, batchSize)
			if res.Error != nil {
				return fmt.Errorf("insert follows: %w", res.Error)
			}
			summary.Follows = int(res.RowsAffected)
		}

		if opts.HeaderImageURL != "" {
			if err := setHeaderImages(tx, opts.HeaderImageURL); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "csv seed loaded",
		slog.Int("users", summary.Users),
		slog.Int("messages", summary.Messages),
		slog.Int("follows", summary.Follows),
	)
	return summary, nil
}

// ClearAll deletes every row, children first.
func ClearAll(db *gorm.DB) error {
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Like{}, &models.Follow{}, &models.Message{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

func setHeaderImages(tx *gorm.DB, url string) error {
	err := tx.Session(&gorm.Session{AllowGlobalUpdate: true, SkipHooks: true}).
		Model(&models.User{}).
		Update("header_image_url", url).Error
	if err != nil {
		return fmt.Errorf("set header images: %w", err)
	}
	return nil
}

// table is a CSV file read into header-indexed rows.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readTable(name string, r io.Reader, required ...string) (*table, error) {
	if r == nil {
		return &table{name: name}, nil
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return &table{name: name}, nil
	}

	t := &table{name: name, columns: make(map[string]int), rows: records[1:]}
	for i, col := range records[0] {
		t.columns[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", name, col)
		}
	}
	return t, nil
}

func (t *table) get(row []string, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ref resolves a 1-based user reference to the inserted id.
func (t *table) ref(row []string, col string, line int, ids []uint) (uint, error) {
	raw := t.get(row, col)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(ids) {
		return 0, fmt.Errorf("%s line %d: %s %q does not reference a user", t.name, line, col, raw)
	}
	return ids[n-1], nil
}

func readUsers(r io.Reader) ([]*models.User, error) {
	t, err := readTable(UsersFile, r, "username", "email", "password")
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(t.rows))
	for i, row := range t.rows {
		password := t.get(row, "password")
		// The generator exports bcrypt digests; anything else is plaintext.
		if !strings.HasPrefix(password, "$2") {
			password, err = credentials.Hash(password)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", UsersFile, i+2, err)
			}
		}
		users = append(users, &models.User{
			Username:       t.get(row, "username"),
			Email:          t.get(row, "email"),
			Password:       password,
			ImageURL:       t.get(row, "image_url"),
			HeaderImageURL: t.get(row, "header_image_url"),
			Bio:            t.get(row, "bio"),
			Location:       t.get(row, "location"),
		})
	}
	return users, nil
}

func readMessages(r io.Reader, ids []uint) ([]*models.Message, error) {
	t, err := readTable(MessagesFile, r, "text", "user_id")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	messages := make([]*models.Message, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		userID, err := t.ref(row, "user_id", line, ids)
		if err != nil {
			return nil, err
		}
		ts := now
		if raw := t.get(row, "timestamp"); raw != "" {
			if ts, err = parseTimestamp(raw); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", MessagesFile, line, err)
			}
		}
		messages = append(messages, &models.Message{
			Text:      t.get(row, "text"),
			Timestamp: ts,
			UserID:    userID,
		})
	}
	return messages, nil
}

func readFollows(r io.Reader, ids []uint) ([]*models.Follow, error) {
	t, err := readTable(FollowsFile, r, "user_being_followed_id", "user_following_id")
	if err != nil {
		return nil, err
	}

	follows := make([]*models.Follow, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		followed, err := t.ref(row, "user_being_followed_id", line, ids)
		if err != nil {
			return nil, err
		}
		follower, err := t.ref(row, "user_following_id", line, ids)
		if err != nil {
			return nil, err
		}
		follows = append(follows, &models.Follow{FollowerID: follower, FollowedID: followed})
	}
	return follows, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
