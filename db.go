package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		content    TEXT NOT NULL,
		author     TEXT NOT NULL,
		author_id  TEXT DEFAULT '',
		channel    TEXT NOT NULL,
		language   TEXT NOT NULL DEFAULT 'unknown',
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_author ON tasks(author);
	CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func InsertTask(db *sql.DB, task Task) error {
	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := db.Exec(
		`INSERT INTO tasks (content, author, author_id, channel, language, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		task.Content, task.Author, task.AuthorID, task.Channel, task.Language, createdAt,
	)
	return err
}

// GetTasksByDate returns all users' tasks whose created_at falls on the
// given YYYY-MM-DD date.
func GetTasksByDate(db *sql.DB, date string) ([]TaskRow, error) {
	rows, err := db.Query(
		`SELECT content, author, channel FROM tasks
		 WHERE date(created_at) = ?
		 ORDER BY created_at ASC, id ASC`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// GetTasksTillDate returns all users' tasks up to and including the given date.
func GetTasksTillDate(db *sql.DB, date string) ([]TaskRow, error) {
	rows, err := db.Query(
		`SELECT content, author, channel FROM tasks
		 WHERE date(created_at) <= ?
		 ORDER BY created_at ASC, id ASC`,
		date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// GetTasksByAuthor returns one user's full task history, oldest first.
func GetTasksByAuthor(db *sql.DB, author string) ([]AuthorTaskRow, error) {
	rows, err := db.Query(
		`SELECT content, channel, date(created_at) FROM tasks
		 WHERE author = ?
		 ORDER BY created_at ASC, id ASC`,
		author,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuthorTaskRows(rows)
}

func GetTasksByAuthorAndDate(db *sql.DB, author, date string) ([]AuthorTaskRow, error) {
	rows, err := db.Query(
		`SELECT content, channel, date(created_at) FROM tasks
		 WHERE author = ? AND date(created_at) = ?
		 ORDER BY created_at ASC, id ASC`,
		author, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuthorTaskRows(rows)
}

func GetTasksByAuthorTillDate(db *sql.DB, author, date string) ([]AuthorTaskRow, error) {
	rows, err := db.Query(
		`SELECT content, channel, date(created_at) FROM tasks
		 WHERE author = ? AND date(created_at) <= ?
		 ORDER BY created_at ASC, id ASC`,
		author, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuthorTaskRows(rows)
}

// DeleteTasksByContent removes every task whose content matches exactly,
// returning the number of rows removed.
func DeleteTasksByContent(db *sql.DB, content string) (int64, error) {
	res, err := db.Exec(`DELETE FROM tasks WHERE content = ?`, content)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func GetAllTasks(db *sql.DB) ([]Task, error) {
	rows, err := db.Query(
		`SELECT id, content, author, author_id, channel, language, created_at
		 FROM tasks ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Content, &t.Author, &t.AuthorID, &t.Channel, &t.Language, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTaskRows(rows *sql.Rows) ([]TaskRow, error) {
	var out []TaskRow
	for rows.Next() {
		var r TaskRow
		if err := rows.Scan(&r.Content, &r.Author, &r.Channel); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanAuthorTaskRows(rows *sql.Rows) ([]AuthorTaskRow, error) {
	var out []AuthorTaskRow
	for rows.Next() {
		var r AuthorTaskRow
		if err := rows.Scan(&r.Content, &r.Channel, &r.Date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
