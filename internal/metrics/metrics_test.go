package metrics

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"

	"github.com/omnipair/omnipair-indexer/internal/supervisor"
)

func TestServe_PortBindFailureIsPermanent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	err = Serve(context.Background(), ln.Addr().String(), zerolog.Nop())
	if !errors.Is(err, supervisor.ErrPermanent) {
		t.Fatalf("occupied port should fail permanently, got %v", err)
	}
}
