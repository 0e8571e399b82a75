// Package inmem provides in-memory repositories for tests and local hacking.
package inmem

import (
	"sync"

	"github.com/trezcool/baraza/core/blog"
	"github.com/trezcool/baraza/core/event"
	"github.com/trezcool/baraza/core/ledger"
	"github.com/trezcool/baraza/core/resource"
	"github.com/trezcool/baraza/core/thread"
	"github.com/trezcool/baraza/core/user"
)

type (
	DB struct {
		user     *userTable
		thread   *threadTable
		blog     *blogTable
		event    *eventTable
		resource *resourceTable
		ledger   *ledgerTable
	}

	userTable struct {
		sync.RWMutex
		table   map[int]*user.User
		pkCount int
	}

	threadTable struct {
		sync.RWMutex
		table   map[int]*thread.Thread
		pkCount int
	}

	blogTable struct {
		sync.RWMutex
		table   map[int]*blog.Blog
		pkCount int
	}

	eventTable struct {
		sync.RWMutex
		table   map[int]*event.Event
		pkCount int
	}

	resourceTable struct {
		sync.RWMutex
		table   map[int]*resource.Resource
		pkCount int
	}

	ledgerTable struct {
		sync.RWMutex
		entries []ledger.Transaction
		pkCount int
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[int]*user.User)},
		thread:   &threadTable{table: make(map[int]*thread.Thread)},
		blog:     &blogTable{table: make(map[int]*blog.Blog)},
		event:    &eventTable{table: make(map[int]*event.Event)},
		resource: &resourceTable{table: make(map[int]*resource.Resource)},
		ledger:   &ledgerTable{},
	}
	return db, nil
}

// Reset drops all rows; tests call it between cases.
func (db *DB) Reset() {
	db.user.Lock()
	db.user.table = make(map[int]*user.User)
	db.user.pkCount = 0
	db.user.Unlock()

	db.thread.Lock()
	db.thread.table = make(map[int]*thread.Thread)
	db.thread.pkCount = 0
	db.thread.Unlock()

	db.blog.Lock()
	db.blog.table = make(map[int]*blog.Blog)
	db.blog.pkCount = 0
	db.blog.Unlock()

	db.event.Lock()
	db.event.table = make(map[int]*event.Event)
	db.event.pkCount = 0
	db.event.Unlock()

	db.resource.Lock()
	db.resource.table = make(map[int]*resource.Resource)
	db.resource.pkCount = 0
	db.resource.Unlock()

	db.ledger.Lock()
	db.ledger.entries = nil
	db.ledger.pkCount = 0
	db.ledger.Unlock()
}
