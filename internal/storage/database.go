package storage

import (
	"database/sql"
	"time"

	"council/internal/models"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a conversation id does not exist
var ErrNotFound = errors.New("conversation not found")

// Database handles SQLite operations for conversations and messages
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection and initializes tables
func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", dbPath)
	}
	// foreign_keys is per connection
	db.SetMaxOpenConns(1)

	database := &Database{db: db}
	if err := database.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return database, nil
}

func (d *Database) createTables() error {
	pragma := `PRAGMA foreign_keys = ON;`

	conversationsTable := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`

	messagesTable := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations (id) ON DELETE CASCADE
	);`

	indexTable := `
	CREATE INDEX IF NOT EXISTS idx_messages_conversation_id ON messages(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at);`

	for _, query := range []string{pragma, conversationsTable, messagesTable, indexTable} {
		if _, err := d.db.Exec(query); err != nil {
			return errors.Wrap(err, "create tables")
		}
	}

	return nil
}

// CreateConversation inserts an empty conversation row
func (d *Database) CreateConversation(conv models.Conversation) error {
	_, err := d.db.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		conv.ID, conv.Title, conv.Created, conv.Created)
	return errors.Wrapf(err, "create conversation %s", conv.ID)
}

// SaveConversation saves or updates a conversation and all its messages
func (d *Database) SaveConversation(conv models.Conversation) error {
	tx, err := d.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	// INSERT OR REPLACE would delete the row and cascade to messages
	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		conv.ID, conv.Title, conv.Created, time.Now())
	if err != nil {
		return errors.Wrapf(err, "upsert conversation %s", conv.ID)
	}

	// Delete existing messages for this conversation
	_, err = tx.Exec("DELETE FROM messages WHERE conversation_id = ?", conv.ID)
	if err != nil {
		return errors.Wrapf(err, "clear messages %s", conv.ID)
	}

	// Insert all messages
	for _, msg := range conv.Messages {
		_, err = tx.Exec(`
			INSERT INTO messages (conversation_id, role, content, created_at)
			VALUES (?, ?, ?, ?)`,
			conv.ID, msg.Role, msg.Content, msg.Time)
		if err != nil {
			return errors.Wrapf(err, "insert message into %s", conv.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// RenameConversation sets a new title on an existing conversation
func (d *Database) RenameConversation(conversationID, title string) error {
	res, err := d.db.Exec(`
		UPDATE conversations SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now(), conversationID)
	if err != nil {
		return errors.Wrapf(err, "rename conversation %s", conversationID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "rename %s", conversationID)
	}
	return nil
}

// LoadConversations loads all conversations from the database
func (d *Database) LoadConversations() ([]models.Conversation, error) {
	rows, err := d.db.Query(`
		SELECT id, title, created_at, updated_at
		FROM conversations
		ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "query conversations")
	}

	var conversations []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.Created, &conv.Updated); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "scan conversation")
		}
		conversations = append(conversations, conv)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, errors.Wrap(err, "iterate conversations")
	}
	// single connection: release it before the message queries
	rows.Close()

	for i := range conversations {
		messages, err := d.loadMessages(conversations[i].ID)
		if err != nil {
			return nil, err
		}
		conversations[i].Messages = messages
	}

	return conversations, nil
}

func (d *Database) loadMessages(conversationID string) ([]models.Message, error) {
	rows, err := d.db.Query(`
		SELECT role, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC`,
		conversationID)
	if err != nil {
		return nil, errors.Wrapf(err, "query messages %s", conversationID)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.Role, &msg.Content, &msg.Time); err != nil {
			return nil, errors.Wrap(err, "scan message")
		}
		messages = append(messages, msg)
	}

	return messages, errors.Wrap(rows.Err(), "iterate messages")
}

// DeleteConversation removes a conversation and all its messages
func (d *Database) DeleteConversation(conversationID string) error {
	_, err := d.db.Exec("DELETE FROM conversations WHERE id = ?", conversationID)
	return errors.Wrapf(err, "delete conversation %s", conversationID)
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}
