package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"personal-ledger/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() (checking, savings []model.Record) {
	checking = []model.Record{
		{Name: "Everyday", Kind: model.KindChecking, Balance: 124.5, OverdraftLimit: 200, OverdraftInterestRate: 12.5, WithdrawalLimit: 10000},
		{Name: "Bills", Kind: model.KindChecking, Balance: -40.25, Frozen: true, OverdraftLimit: 100, OverdraftInterestRate: 15, WithdrawalLimit: 500},
	}
	savings = []model.Record{
		{Name: "Rainy Day", Kind: model.KindSavings, Balance: 1000.01, OverdraftInterestRate: 15, WithdrawalLimit: 10000, InterestRate: 2.75},
	}
	return checking, savings
}

func TestFileAccountStoreRoundTrip(t *testing.T) {
	// Arrange
	root := t.TempDir()
	store := NewFileAccountStore(root, nil)
	checking, savings := sampleRecords()

	// Act
	require.NoError(t, store.Save("alice", checking, savings))
	gotChecking, gotSavings, err := store.Load("alice")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, checking, gotChecking)
	assert.Equal(t, savings, gotSavings)

	_, err = os.Stat(filepath.Join(root, "alice", "checking.txt.tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestFileAccountStoreFormat(t *testing.T) {
	root := t.TempDir()
	store := NewFileAccountStore(root, nil)
	checking, savings := sampleRecords()
	require.NoError(t, store.Save("alice", checking, savings))

	raw, err := os.ReadFile(filepath.Join(root, "alice", "checking.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Everyday,124.5,false,200,12.5,10000\nBills,-40.25,true,100,15,500\n", string(raw))

	raw, err = os.ReadFile(filepath.Join(root, "alice", "savings.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Rainy Day,1000.01,false,0,15,10000,2.75\n", string(raw))
}

func TestFileAccountStoreMissingFiles(t *testing.T) {
	store := NewFileAccountStore(t.TempDir(), nil)

	checking, savings, err := store.Load("nobody")

	require.NoError(t, err)
	assert.Empty(t, checking)
	assert.Empty(t, savings)
}

func TestFileAccountStoreSaveEmptiesRemovedAccounts(t *testing.T) {
	store := NewFileAccountStore(t.TempDir(), nil)
	checking, savings := sampleRecords()
	require.NoError(t, store.Save("alice", checking, savings))

	require.NoError(t, store.Save("alice", checking[:1], nil))

	gotChecking, gotSavings, err := store.Load("alice")
	require.NoError(t, err)
	assert.Len(t, gotChecking, 1)
	assert.Empty(t, gotSavings)
}

func TestDecodeAccounts(t *testing.T) {
	t.Run("legacy and malformed checking lines", func(t *testing.T) {
		input := strings.Join([]string{
			"Everyday,150.5",              // legacy: defaults applied
			"lonely",                      // fewer than two fields: skipped
			"",                            // blank: skipped
			"Broken,abc,false,0,15,10000", // bad balance: skipped
			"Bills,10,TRUE,50,9,700",      // current format
			"Odd,20,true,x,15,10000",      // bad limits: kept with defaults
		}, "\n")
		var reported []int

		got, err := DecodeAccounts(strings.NewReader(input), model.KindChecking, func(line int, err error) {
			reported = append(reported, line)
		})

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, model.Record{
			Name: "Everyday", Kind: model.KindChecking, Balance: 150.5,
			OverdraftInterestRate: 15, WithdrawalLimit: 10000,
		}, got[0])
		assert.Equal(t, model.Record{
			Name: "Bills", Kind: model.KindChecking, Balance: 10, Frozen: true,
			OverdraftLimit: 50, OverdraftInterestRate: 9, WithdrawalLimit: 700,
		}, got[1])
		assert.Equal(t, "Odd", got[2].Name)
		assert.False(t, got[2].Frozen)
		assert.Equal(t, model.DefaultWithdrawalLimit, got[2].WithdrawalLimit)
		assert.Equal(t, []int{4, 6}, reported)
	})

	t.Run("savings rate positions", func(t *testing.T) {
		input := "Old,100,3.5\nNew,200,false,0,15,10000,4.25\nBare,300\n"

		got, err := DecodeAccounts(strings.NewReader(input), model.KindSavings, nil)

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 3.5, got[0].InterestRate)
		assert.Equal(t, 4.25, got[1].InterestRate)
		assert.Zero(t, got[2].InterestRate)
	})
}

func TestEncodeAccountCheckingOmitsRate(t *testing.T) {
	line := EncodeAccount(model.Record{Name: "Everyday", Kind: model.KindChecking, InterestRate: 9, WithdrawalLimit: 10000, OverdraftInterestRate: 15})
	assert.Equal(t, "Everyday,0,false,0,15,10000", line)
}
