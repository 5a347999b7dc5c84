package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const demoPassword = "Daycare123"

type seedUser struct {
	FullName string
	Email    string
	Phone    string
	Role     string
}

type seedChild struct {
	ParentEmail string
	FirstName   string
	LastName    string
	DateOfBirth string
	Allergies   string
}

type seedBabysitter struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

var demoUsers = []seedUser{
	{FullName: "Mona Manager", Email: "manager@daycare.local", Phone: "+15550000001", Role: "manager"},
	{FullName: "Sam Staff", Email: "staff@daycare.local", Phone: "+15550000002", Role: "staff"},
	{FullName: "Pat Parent", Email: "parent@daycare.local", Phone: "+15550000003", Role: "parent"},
}

var demoChildren = []seedChild{
	{ParentEmail: "parent@daycare.local", FirstName: "Lina", LastName: "Parent", DateOfBirth: "2021-04-12", Allergies: "peanuts"},
	{ParentEmail: "parent@daycare.local", FirstName: "Omar", LastName: "Parent", DateOfBirth: "2022-09-30"},
}

var demoBabysitters = []seedBabysitter{
	{FirstName: "Alice", LastName: "Martin", Phone: "+15550000101", Email: "alice@daycare.local"},
	{FirstName: "Bruno", LastName: "Keller", Phone: "+15550000102", Email: "bruno@daycare.local"},
	{FirstName: "Chloe", LastName: "Nguyen", Phone: "+15550000103", Email: "chloe@daycare.local"},
}

// SeedDemoData fills an empty database with a manager, a staff member, a
// parent with two children and a few babysitters. It does nothing when any
// user already exists.
func SeedDemoData(dbURL string) error {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		zap.L().Info("Users already exist, skipping demo seed", zap.Int("users", count))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	parents := make(map[string]int64)
	for _, u := range demoUsers {
		var id int64
		err := tx.QueryRow(`
			INSERT INTO users (full_name, email, phone_number, password_hash, role, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, true, NOW(), NOW())
			RETURNING id`,
			u.FullName, u.Email, u.Phone, string(hash), u.Role,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.Email, err)
		}
		parents[u.Email] = id
	}

	for _, c := range demoChildren {
		_, err := tx.Exec(`
			INSERT INTO children (parent_id, first_name, last_name, date_of_birth, allergies, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
			parents[c.ParentEmail], c.FirstName, c.LastName, c.DateOfBirth, c.Allergies,
		)
		if err != nil {
			return fmt.Errorf("insert child %s: %w", c.FirstName, err)
		}
	}

	for _, b := range demoBabysitters {
		_, err := tx.Exec(`
			INSERT INTO babysitters (first_name, last_name, phone_number, email, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, NOW(), NOW())`,
			b.FirstName, b.LastName, b.Phone, b.Email,
		)
		if err != nil {
			return fmt.Errorf("insert babysitter %s: %w", b.FirstName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	zap.L().Info("Demo data seeded",
		zap.Int("users", len(demoUsers)),
		zap.Int("children", len(demoChildren)),
		zap.Int("babysitters", len(demoBabysitters)))
	return nil
}
