/*
Package storage persists component configurations as canonical text.

Each component (the notary and its security module) owns exactly one
configuration, written whole on every state change. The Store interface has
three operations — Store (atomic overwrite), Load (missing configurations
are reported, not errors) and Delete (idempotent) — and two backends
implement it.

# Architecture

	┌──────────────────── CONFIGURATION STORAGE ─────────────────────┐
	│                                                                │
	│  ┌────────────────────────────────────────────┐                │
	│  │             Store interface                │                │
	│  │  Store(text)         atomic overwrite      │                │
	│  │  Load() (text, ok)   ok=false when missing │                │
	│  │  Delete()            idempotent            │                │
	│  └─────────┬──────────────────────┬───────────┘                │
	│            │                      │                            │
	│  ┌─────────▼──────────┐  ┌────────▼─────────────────┐          │
	│  │     FileStore      │  │  BoltDatabase/BoltStore  │          │
	│  │  one file per      │  │  one BoltDB file, one    │          │
	│  │  configuration     │  │  bucket, keyed by        │          │
	│  │                    │  │  configuration name      │          │
	│  │  ~/.bali/          │  │                          │          │
	│  │   ├─ notary.bali   │  │  configurations          │          │
	│  │   ├─ ssm.bali      │  │   ├─ notary.bali → text  │          │
	│  │   └─ account.bali  │  │   ├─ ssm.bali    → text  │          │
	│  │                    │  │   └─ ...                 │          │
	│  └────────────────────┘  └──────────────────────────┘          │
	└────────────────────────────────────────────────────────────────┘

# Atomicity

FileStore writes land in a temporary file created in the same directory and
are renamed over the target, so a crash mid-write leaves either the old
configuration or the new one, never a torn file. Rename within a directory
is atomic on POSIX filesystems; keeping the temporary file next to its
target avoids cross-device renames.

BoltStore gets the same guarantee from BoltDB's transactions: every Store
and Delete runs in a write transaction that either commits or leaves the
previous value in place.

Neither backend supports partial updates, matching how the components use
them: load, mutate an in-memory copy, serialize, overwrite.

# Permissions

One of the configurations holds private key material, so FileStore creates
directories 0700 and files 0600, and BoltDB files are opened 0600. Nothing
in this package ever logs or copies configuration contents.

# Choosing a backend

FileStore is the default: one notary on one host, three small files under
~/.bali, inspectable with a pager. BoltDatabase serves deployments that
host many notaries and want one transactional database file instead of a
directory tree. Open it once and hand each component its Store:

	db, err := storage.OpenBoltDatabase("/var/lib/notary/notary.db")
	if err != nil {
		return err
	}
	defer db.Close()
	notaryStore := db.Store("notary.bali")
	ssmStore := db.Store("ssm.bali")

BoltDB holds an exclusive file lock, so a second OpenBoltDatabase on the
same path blocks until the first closes; share one BoltDatabase per
process.

# Usage

	store, err := storage.NewFileStore(directory, "notary.bali")
	if err != nil {
		return err
	}

	text, ok, err := store.Load()
	if err != nil {
		return err
	}
	if !ok {
		// First use: initialize a default configuration and write it
		// before proceeding.
	}

	if err := store.Store(configuration.Format()); err != nil {
		return err
	}

# Integration Points

This package is used by:

  - pkg/ssm: persists $tag, $state and key material after every mutating
    operation
  - pkg/notary: persists $state, $certificate and $citation
  - cmd/notary: builds the file stores under the configuration directory,
    including the saved account tag

# Troubleshooting

Configuration reported missing after a crash:
  - Symptom: Load returns ok=false though the component had state
  - Check: stray *.tmp-* files in the directory (a crash between create
    and rename leaves one; it is never read and can be deleted)
  - A rename that completed is durable; a rename that did not leaves the
    previous configuration intact

Permission denied under a shared home:
  - Symptom: NewFileStore or Store fails with EACCES
  - Check: the configuration directory must be owned by the invoking user;
    it is created 0700 and is not meant to be shared

Two processes on one BoltDB file:
  - Symptom: OpenBoltDatabase hangs
  - Cause: BoltDB's exclusive lock; the other process still has the file
    open
*/
package storage
