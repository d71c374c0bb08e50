package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/doozez/doozez/config"
	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	if _, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS doozez`); err != nil {
		return nil, err
	}
	err = createUserTable(db)
	if err != nil {
		return nil, err
	}
	err = createMandateTable(db)
	if err != nil {
		return nil, err
	}
	err = createPaymentMethodTable(db)
	if err != nil {
		return nil, err
	}
	err = createJobTable(db)
	if err != nil {
		return nil, err
	}
	err = createSafeTable(db)
	if err != nil {
		return nil, err
	}
	err = createParticipationTable(db)
	if err != nil {
		return nil, err
	}
	err = createInvitationTable(db)
	if err != nil {
		return nil, err
	}
	err = createTaskTable(db)
	if err != nil {
		return nil, err
	}
	err = createPaymentTable(db)
	if err != nil {
		return nil, err
	}
	err = createInstalmentTable(db)
	if err != nil {
		return nil, err
	}
	err = createEventTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	uuidStr := id.String()
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)
	return idWithSuffix
}

func createUserTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.users (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			first_name TEXT,
			last_name TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createMandateTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.mandates (
			id SERIAL PRIMARY KEY,
			mandate_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			scheme TEXT,
			external_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createPaymentMethodTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.payment_methods (
			id SERIAL PRIMARY KEY,
			payment_method_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL REFERENCES doozez.users(user_id),
			status TEXT NOT NULL,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			mandate_id TEXT REFERENCES doozez.mandates(mandate_id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createJobTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.jobs (
			id SERIAL PRIMARY KEY,
			job_id TEXT NOT NULL UNIQUE,
			job_type TEXT NOT NULL,
			status TEXT NOT NULL,
			user_id TEXT NOT NULL REFERENCES doozez.users(user_id),
			created_on TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createSafeTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.safes (
			id SERIAL PRIMARY KEY,
			safe_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			monthly_payment NUMERIC NOT NULL,
			currency TEXT NOT NULL,
			total_participants INTEGER NOT NULL DEFAULT 0,
			initiator_id TEXT NOT NULL REFERENCES doozez.users(user_id),
			job_id TEXT REFERENCES doozez.jobs(job_id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createParticipationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.participations (
			id SERIAL PRIMARY KEY,
			participation_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL REFERENCES doozez.users(user_id),
			safe_id TEXT NOT NULL REFERENCES doozez.safes(safe_id),
			user_role TEXT NOT NULL,
			status TEXT NOT NULL,
			payment_method_id TEXT REFERENCES doozez.payment_methods(payment_method_id),
			win_sequence INTEGER,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createInvitationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.invitations (
			id SERIAL PRIMARY KEY,
			invitation_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			sender_id TEXT NOT NULL REFERENCES doozez.users(user_id),
			recipient_id TEXT NOT NULL REFERENCES doozez.users(user_id),
			safe_id TEXT NOT NULL REFERENCES doozez.safes(safe_id),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createTaskTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.tasks (
			id SERIAL PRIMARY KEY,
			task_id TEXT NOT NULL UNIQUE,
			job_id TEXT REFERENCES doozez.jobs(job_id),
			status TEXT NOT NULL,
			task_type TEXT NOT NULL,
			parameters JSONB NOT NULL DEFAULT '{}',
			exceptions JSONB,
			sequence INTEGER NOT NULL DEFAULT 0,
			created_on TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createPaymentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.payments (
			id SERIAL PRIMARY KEY,
			payment_id TEXT NOT NULL UNIQUE,
			participation_id TEXT NOT NULL REFERENCES doozez.participations(participation_id),
			status TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			currency TEXT NOT NULL,
			charge_date TIMESTAMP,
			external_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createInstalmentTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.instalments (
			id SERIAL PRIMARY KEY,
			instalment_id TEXT NOT NULL UNIQUE,
			participation_id TEXT NOT NULL REFERENCES doozez.participations(participation_id),
			status TEXT NOT NULL,
			name TEXT,
			external_id TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createEventTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS doozez.events (
			id SERIAL PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			gateway_event_id TEXT NOT NULL UNIQUE,
			resource_type TEXT NOT NULL,
			action TEXT NOT NULL,
			link_id TEXT,
			cause TEXT,
			description TEXT,
			external_created_at TIMESTAMP,
			created_on TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}
