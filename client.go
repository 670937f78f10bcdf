package chsink

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// dbClient is the subset of the ClickHouse connection the writer depends on.
// Keeping it narrow lets tests script server behavior without a server.
type dbClient interface {
	// exec runs a statement that returns no rows.
	exec(ctx context.Context, query string) error
	// queryStrings runs a query whose result is a single string column and
	// returns the values in row order.
	queryStrings(ctx context.Context, query string) ([]string, error)
	// insertBatch streams every dataset row into a prepared batch for the
	// given INSERT statement and sends it.
	insertBatch(ctx context.Context, query string, ds *Dataset) error
	// close releases the underlying connection.
	close() error
}

// nativeClient implements dbClient over the ClickHouse native protocol.
type nativeClient struct {
	conn driver.Conn
}

// dialNative opens a native-protocol connection. The connection is not bound
// to a database so that statements can address databases that do not exist
// yet.
func dialNative(host string, port int, username, password string) (*nativeClient, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{net.JoinHostPort(host, strconv.Itoa(port))},
		Auth: clickhouse.Auth{
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}
	return &nativeClient{conn: conn}, nil
}

func (c *nativeClient) exec(ctx context.Context, query string) error {
	return classify(c.conn.Exec(ctx, query))
}

func (c *nativeClient) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, classify(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (c *nativeClient) insertBatch(ctx context.Context, query string, ds *Dataset) error {
	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return classify(err)
	}
	for i := range ds.Rows() {
		if err := batch.Append(ds.row(i)...); err != nil {
			return classify(err)
		}
	}
	return classify(batch.Send())
}

func (c *nativeClient) close() error {
	return c.conn.Close()
}
