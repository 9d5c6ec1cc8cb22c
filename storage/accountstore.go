package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"personal-ledger/model"
)

const (
	checkingFile = "checking.txt"
	savingsFile  = "savings.txt"
)

// FileAccountStore keeps each owner's accounts in <root>/<owner>/checking.txt
// and savings.txt, one comma-separated line per account:
//
//	name,balance,frozen,overdraftLimit,overdraftInterestRate,withdrawalLimit[,interestRate]
//
// The trailing interestRate is written for savings accounts only.
type FileAccountStore struct {
	root   string
	logger *slog.Logger
}

// NewFileAccountStore returns a store rooted at root. Directories are created
// on first save.
func NewFileAccountStore(root string, logger *slog.Logger) *FileAccountStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileAccountStore{root: root, logger: logger.With("component", "account_store")}
}

func (s *FileAccountStore) ownerDir(owner string) string {
	return filepath.Join(s.root, owner)
}

// Load reads both collections. Missing files yield empty collections.
func (s *FileAccountStore) Load(owner string) (checking, savings []model.Record, err error) {
	dir := s.ownerDir(owner)
	checking, err = s.loadFile(filepath.Join(dir, checkingFile), model.KindChecking)
	if err != nil {
		return nil, nil, fmt.Errorf("load checking accounts for %s: %w", owner, err)
	}
	savings, err = s.loadFile(filepath.Join(dir, savingsFile), model.KindSavings)
	if err != nil {
		return nil, nil, fmt.Errorf("load savings accounts for %s: %w", owner, err)
	}
	return checking, savings, nil
}

func (s *FileAccountStore) loadFile(path string, kind model.Kind) ([]model.Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := DecodeAccounts(f, kind, func(line int, err error) {
		s.logger.Warn("unreadable account line", "path", path, "line", line, "error", err)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Save rewrites both collection files. Each file is written to a temporary
// sibling and renamed into place.
func (s *FileAccountStore) Save(owner string, checking, savings []model.Record) error {
	dir := s.ownerDir(owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, checkingFile), checking); err != nil {
		return fmt.Errorf("save checking accounts for %s: %w", owner, err)
	}
	if err := writeAtomic(filepath.Join(dir, savingsFile), savings); err != nil {
		return fmt.Errorf("save savings accounts for %s: %w", owner, err)
	}
	return nil
}

func writeAtomic(path string, records []model.Record) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := EncodeAccounts(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// EncodeAccounts writes one line per record.
func EncodeAccounts(w io.Writer, records []model.Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := bw.WriteString(EncodeAccount(r) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeAccount renders a single record as a collection line.
func EncodeAccount(r model.Record) string {
	fields := []string{
		r.Name,
		formatFloat(r.Balance),
		strconv.FormatBool(r.Frozen),
		formatFloat(r.OverdraftLimit),
		formatFloat(r.OverdraftInterestRate),
		formatFloat(r.WithdrawalLimit),
	}
	if r.Kind == model.KindSavings {
		fields = append(fields, formatFloat(r.InterestRate))
	}
	return strings.Join(fields, ",")
}

// ErrPartialRecord reports a line whose limit columns could not be parsed.
// The account is kept with default limits.
var ErrPartialRecord = errors.New("account limits unreadable, defaults applied")

// DecodeAccounts reads collection lines of the given kind. Problems are
// reported to skip (which may be nil); undecodable lines are left out, and
// partial records are kept.
func DecodeAccounts(r io.Reader, kind model.Kind, skip func(line int, err error)) ([]model.Record, error) {
	var records []model.Record
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimRight(sc.Text(), "\r")
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		rec, err := DecodeAccount(parts, kind)
		if err != nil && skip != nil {
			skip(n, err)
		}
		if err != nil && !errors.Is(err, ErrPartialRecord) {
			continue
		}
		records = append(records, rec)
	}
	return records, sc.Err()
}

// DecodeAccount parses the fields of one line. Lines shorter than six
// fields predate the limit columns and get defaults; a legacy savings line
// with three to five fields carries its rate in the third field.
func DecodeAccount(parts []string, kind model.Kind) (model.Record, error) {
	rec := model.Record{
		Name:                  parts[0],
		Kind:                  kind,
		OverdraftLimit:        model.DefaultOverdraftLimit,
		OverdraftInterestRate: model.DefaultOverdraftInterestRate,
		WithdrawalLimit:       model.DefaultWithdrawalLimit,
	}
	if len(parts) < 2 {
		return rec, fmt.Errorf("account line has %d fields", len(parts))
	}
	balance, err := parseFloat(parts[1])
	if err != nil {
		return rec, fmt.Errorf("balance: %w", err)
	}
	rec.Balance = balance

	if kind == model.KindSavings {
		switch {
		case len(parts) >= 7:
			rec.InterestRate, err = parseFloat(parts[6])
		case len(parts) >= 3 && len(parts) < 6:
			rec.InterestRate, err = parseFloat(parts[2])
		}
		if err != nil {
			return rec, fmt.Errorf("interest rate: %w", err)
		}
	}

	if len(parts) < 6 {
		return rec, nil
	}
	overdraft, err1 := parseFloat(parts[3])
	rate, err2 := parseFloat(parts[4])
	limit, err3 := parseFloat(parts[5])
	if err := errors.Join(err1, err2, err3); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrPartialRecord, err)
	}
	rec.Frozen = strings.EqualFold(strings.TrimSpace(parts[2]), "true")
	rec.OverdraftLimit = overdraft
	rec.OverdraftInterestRate = rate
	rec.WithdrawalLimit = limit
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
