//go:build ignore

// compare_ledgers checks that two bridge data directories hold the same results log.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"VoteBridge/internal/ledger"
	"VoteBridge/internal/storage"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data_dir1> <data_dir2>\n", os.Args[0])
		os.Exit(1)
	}

	l1, close1 := openLedger(os.Args[1])
	defer close1()

	l2, close2 := openLedger(os.Args[2])
	defer close2()

	fmt.Printf("log 1 (%s): %d results\n", os.Args[1], l1.Len())
	fmt.Printf("log 2 (%s): %d results\n", os.Args[2], l2.Len())

	for _, l := range []*ledger.Ledger{l1, l2} {
		if err := l.Verify(nil); err != nil {
			fmt.Printf("\nlog is corrupt: %v\n", err)
			os.Exit(1)
		}
	}

	diffs := compare(l1, l2)
	if len(diffs) == 0 && l1.Len() == l2.Len() {
		fmt.Println("\nlogs are identical")
		return
	}

	fmt.Println("\nlogs differ:")

	if l1.Len() != l2.Len() {
		fmt.Printf("  - lengths %d and %d\n", l1.Len(), l2.Len())
	}

	for _, d := range diffs {
		fmt.Printf("  - %s\n", d)
	}

	os.Exit(1)
}

// openLedger opens the results log under a bridge data directory.
func openLedger(dir string) (*ledger.Ledger, func()) {
	db, err := storage.Open(filepath.Join(dir, "db"), storage.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", dir, err)
		os.Exit(1)
	}

	l, err := ledger.Open(db)
	if err != nil {
		db.Close()
		fmt.Fprintf(os.Stderr, "open results log in %s: %v\n", dir, err)
		os.Exit(1)
	}

	return l, func() { db.Close() }
}

// compare lists the indices present in both logs whose entries differ.
func compare(l1, l2 *ledger.Ledger) []string {
	n := min(l1.Len(), l2.Len())

	var diffs []string

	for i := uint64(0); i < n; i++ {
		e1, err1 := l1.Get(i)
		e2, err2 := l2.Get(i)

		if err1 != nil || err2 != nil {
			diffs = append(diffs, fmt.Sprintf("index %d unreadable: %v / %v", i, err1, err2))
			continue
		}

		if e1.Result != e2.Result || e1.Digest != e2.Digest {
			diffs = append(diffs, fmt.Sprintf("index %d: %s vs %s", i, e1.Result, e2.Result))
		}
	}

	return diffs
}
