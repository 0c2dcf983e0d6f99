package elastic_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog/log"
)

const DefaultIndexPrefix = "railenrich"

// Indexer mirrors output tables into Elasticsearch, one index per table
type Indexer struct {
	Prefix string

	bulkIndexer esutil.BulkIndexer
}

func NewIndexer(client *elasticsearch.Client, prefix string) (*Indexer, error) {
	bulkIndexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:        client,
		FlushInterval: 15 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	return &Indexer{
		Prefix:      prefix,
		bulkIndexer: bulkIndexer,
	}, nil
}

func (i *Indexer) IndexName(name string) string {
	return fmt.Sprintf("%s-%s", i.Prefix, name)
}

// Index queues every row of the table as a document in the table's index
func (i *Indexer) Index(ctx context.Context, name string, rows any) error {
	table := reflect.ValueOf(rows)
	if table.Kind() != reflect.Slice {
		return fmt.Errorf("cannot index %T", rows)
	}

	indexName := i.IndexName(name)

	for n := 0; n < table.Len(); n++ {
		document, err := json.Marshal(table.Index(n).Interface())
		if err != nil {
			return err
		}

		err = i.bulkIndexer.Add(
			ctx,
			esutil.BulkIndexerItem{
				Index:  indexName,
				Action: "index",
				Body:   bytes.NewReader(document),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						log.Error().Err(err).Str("indexName", indexName).Msg("Failed to index document")
					} else {
						log.Error().Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("Failed to index document")
					}
				},
			},
		)
		if err != nil {
			return err
		}
	}

	log.Info().Str("index", indexName).Int("rows", table.Len()).Msg("Queued for indexing")

	return nil
}

// Close flushes everything queued so far
func (i *Indexer) Close(ctx context.Context) error {
	err := i.bulkIndexer.Close(ctx)

	stats := i.bulkIndexer.Stats()
	log.Info().Uint64("indexed", stats.NumIndexed).Uint64("failed", stats.NumFailed).Msg("Elasticsearch indexing finished")

	return err
}
