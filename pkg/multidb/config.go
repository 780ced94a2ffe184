package multidb

type Driver string

func (d Driver) String() string {
	return string(d)
}

const (
	Postgres Driver = "postgres"
	Sqlite3  Driver = "sqlite3"
)

// SupportedDriver reports whether d can be opened by SqlDbConnMaker.
func SupportedDriver(d Driver) bool {
	switch d {
	case Postgres, Sqlite3:
		return true
	default:
		return false
	}
}

type GoSqlDb struct {
	Debug bool
	DSN   string // Data Source Name
}

type DatabaseResource struct {
	Disable bool
	Driver  Driver // postgres or sqlite3

	// per driver configuration
	Postgres GoSqlDb
	Sqlite3  GoSqlDb
}

func (r DatabaseResource) driverConfig() (GoSqlDb, bool) {
	switch r.Driver {
	case Postgres:
		return r.Postgres, true
	case Sqlite3:
		return r.Sqlite3, true
	default:
		return GoSqlDb{}, false
	}
}

type DatabaseResources map[string]DatabaseResource
