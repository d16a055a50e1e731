package bundlerelay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransactionOKNilErr(t *testing.T) {
	s := FinalStatus{}
	require.True(t, s.TransactionOK(), "expected nil err to be OK")
}

func TestTransactionOKNullErr(t *testing.T) {
	s := FinalStatus{Err: []byte("null")}
	require.True(t, s.TransactionOK(), "expected null err to be OK")
}

func TestTransactionOKWrappedOk(t *testing.T) {
	s := FinalStatus{Err: []byte(`{"Ok":null}`)}
	require.True(t, s.TransactionOK(), "expected {Ok:null} to be OK")
}

func TestTransactionOKActualError(t *testing.T) {
	s := FinalStatus{Err: []byte(`{"InstructionError":[4,{"Custom":6004}]}`)}
	require.False(t, s.TransactionOK(), "expected InstructionError to not be OK")
}
