package inmem

import (
	"sync"
	"time"

	"github.com/corpacademy/client-go/core/course"
	"github.com/corpacademy/client-go/core/report"
	"github.com/corpacademy/client-go/core/user"
)

// DB is a map-backed stand-in for the LMS backend, for tests.
// It mimics the backend's observable behavior: ids, revision snapshots,
// progress recomputation, and error shapes.
type DB struct {
	sync.Mutex

	me        user.User
	reports   map[int]*report.Report
	revisions map[int][]report.Revision
	authors   map[int]user.User // report author, for queue annotation
	courses   []*course.Assignment
	catalog   []course.Assignment

	nextID  int
	nextRev int
	clock   time.Time

	// failNext, when set, fails the next repository call with this error.
	failNext error
}

func NewDB() *DB {
	return &DB{
		reports:   make(map[int]*report.Report),
		revisions: make(map[int][]report.Revision),
		authors:   make(map[int]user.User),
		clock:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// SetMe sets the identity the fake backend authenticates as.
func (db *DB) SetMe(usr user.User) {
	db.Lock()
	defer db.Unlock()
	db.me = usr
}

// FailNext makes the next repository call return err.
func (db *DB) FailNext(err error) {
	db.Lock()
	defer db.Unlock()
	db.failNext = err
}

// SeedCourses replaces the "my courses" table.
func (db *DB) SeedCourses(list ...course.Assignment) {
	db.Lock()
	defer db.Unlock()
	db.courses = db.courses[:0]
	for i := range list {
		a := list[i]
		db.courses = append(db.courses, &a)
	}
}

// SeedCatalog replaces the catalog table.
func (db *DB) SeedCatalog(list ...course.Assignment) {
	db.Lock()
	defer db.Unlock()
	db.catalog = append(db.catalog[:0], list...)
}

// takeFail pops the injected error, if any. Callers must hold the lock.
func (db *DB) takeFail() error {
	err := db.failNext
	db.failNext = nil
	return err
}

// tick advances the fake clock so snapshots get distinct timestamps.
// Callers must hold the lock.
func (db *DB) tick() time.Time {
	db.clock = db.clock.Add(time.Minute)
	return db.clock
}
