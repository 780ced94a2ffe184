package multidb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/yusufsyaifudin/cyberhook/pkg/closer"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"go.uber.org/multierr"
)

// MultiDB gives sqlx connection by label, the driver must match the configured one.
type MultiDB interface {
	GetSqlx(driver Driver, key string) (*sqlx.DB, error)
	io.Closer
}

type SqlDbConnMakerConfig struct {
	Config DatabaseResources `validate:"required"`
}

type SqlDbConnMaker struct {
	conf     DatabaseResources
	disabled map[string]struct{} // list of disabled databases, using struct for minimal memory footprint
	dbSQL    map[string]*sqlx.DB // db key name => real connection
	dbDriver map[string]Driver   // db key name => driver name
	closers  []closer.Named
}

var _ MultiDB = (*SqlDbConnMaker)(nil)

func NewSqlDbConnMaker(conf SqlDbConnMakerConfig) (*SqlDbConnMaker, error) {
	err := validator.Validate(conf)
	if err != nil {
		err = fmt.Errorf("sql db connection maker failed: %w", err)
		return nil, err
	}

	instance := &SqlDbConnMaker{
		conf:     conf.Config,
		disabled: make(map[string]struct{}),
		dbSQL:    make(map[string]*sqlx.DB),
		dbDriver: make(map[string]Driver),
		closers:  make([]closer.Named, 0),
	}

	err = instance.connect()
	if err != nil {
		// close previous opened connection if error happen
		if _err := instance.Close(); _err != nil {
			err = fmt.Errorf("close db sql error: %w: %s", err, _err)
		}

		return nil, err
	}

	return instance, nil
}

func (i *SqlDbConnMaker) GetSqlx(driver Driver, key string) (*sqlx.DB, error) {
	key = normalizeLabel(key)
	_, exists := i.disabled[key]
	if exists {
		return nil, fmt.Errorf("db with key '%s' is disabled", key)
	}

	dbConnection, ok := i.dbSQL[key]
	if !ok {
		return nil, fmt.Errorf("key '%s' is not exist on db list", key)
	}

	registeredDriver, ok := i.dbDriver[key]
	if ok && driver == registeredDriver {
		return dbConnection, nil
	}

	return nil, fmt.Errorf("db key '%s' not using driver %s", key, driver)
}

func (i *SqlDbConnMaker) Close() error {
	return closer.CloseAll(context.Background(), i.closers)
}

func (i *SqlDbConnMaker) connect() error {
	for dbLabel, dbConfig := range i.conf {
		dbLabel = normalizeLabel(dbLabel)
		if err := validator.Var(dbLabel, "required,alphanum"); err != nil {
			err = fmt.Errorf("error connecting to database dbLabel '%s': %w", dbLabel, err)
			return err
		}

		if dbConfig.Disable {
			i.disabled[dbLabel] = struct{}{}
			continue
		}

		driverConf, ok := dbConfig.driverConfig()
		if !ok {
			return fmt.Errorf("not supported driver '%s' on db '%s'", dbConfig.Driver, dbLabel)
		}

		driver := dbConfig.Driver.String()
		db, err := sql.Open(driver, driverConf.DSN)
		if err != nil {
			err = fmt.Errorf("cannot open db connection '%s': %w", dbLabel, err)
			return err
		}

		if driverConf.Debug {
			db = sqldblogger.OpenDriver(driverConf.DSN, db.Driver(), &queryLogger{label: dbLabel}, sqldblogger.WithConnectionIDFieldname(dbLabel))
		}

		if dbConfig.Driver == Sqlite3 {
			// ":memory:" database lives per connection
			db.SetMaxOpenConns(1)
		}

		if err = db.Ping(); err != nil {
			err = multierr.Append(fmt.Errorf("error connecting to database %s: %w", dbLabel, err), db.Close())
			return err
		}

		// don't forget to register in closer, using unique name to track in the Log
		sqlxConn := sqlx.NewDb(db, driver)
		i.dbSQL[dbLabel] = sqlxConn
		i.dbDriver[dbLabel] = dbConfig.Driver
		i.closers = append(i.closers, closer.New("db "+dbLabel, sqlxConn))
	}

	return nil
}

func normalizeLabel(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
