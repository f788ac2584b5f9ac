package main

import (
	"log"
	"os"

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/user"
	inmemdb "github.com/trezcool/sayansi/storage/inmem"
	"github.com/trezcool/sayansi/storage/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	cli, err := newCommandLine(conf)
	errAndDie(err)

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newCommandLine(conf *core.Config) (*commandLine, error) {
	var usrRepo user.Repository
	var ensureIndexesFunc func() error

	switch conf.Database.Engine {
	case "mongodb":
		db, err := mongodb.Open(conf)
		if err != nil {
			return nil, err
		}
		usrRepo = mongodb.NewUserRepository(db)
		ensureIndexesFunc = func() error { return mongodb.EnsureIndexes(db) }
	default: // memory
		db, err := inmemdb.Open()
		if err != nil {
			return nil, err
		}
		usrRepo = inmemdb.NewUserRepository(db)
		ensureIndexesFunc = func() error { return nil }
	}

	return &commandLine{
		usrRepo:       usrRepo,
		ensureIndexes: ensureIndexesFunc,
	}, nil
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
