// Package dynstore implements store.Backend on a single DynamoDB table.
//
// Items are keyed by (coleccion, id) and keep the document body in the
// datos map attribute. Equality clauses are pushed down as a filter
// expression; ordering by a field other than the id and the remaining
// operators are evaluated in memory by store.Evaluar. Timestamps are
// stored as fixed-width UTC strings so they sort lexically.
package dynstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/juliosincable/infourbi/internal/store"
)

const (
	attrColeccion = "coleccion"
	attrID        = "id"
	attrDatos     = "datos"

	tiempoLayout = "2006-01-02T15:04:05.000000000Z"
)

// Config selects the table and, for dynamodb-local, the endpoint.
type Config struct {
	Table    string
	Region   string
	Endpoint string
}

type Store struct {
	client *dynamodb.Client
	table  string
}

var _ store.Backend = (*Store)(nil)

// New wraps an existing client. The table must already exist.
func New(client *dynamodb.Client, table string) *Store {
	return &Store{client: client, table: table}
}

// Open loads the AWS configuration, creates the table when it is missing
// and returns the backend.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		// dynamodb-local accepts any credentials
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) {
				return aws.Credentials{AccessKeyID: "local", SecretAccessKey: "local", Source: "dynstore"}, nil
			})))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	s := New(client, cfg.Table)
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}
	var nf *types.ResourceNotFoundException
	if !errors.As(err, &nf) {
		return fmt.Errorf("dynamodb describe %s: %w", s.table, err)
	}

	log.Info().Str("component", "store").Str("table", s.table).Msg("creando tabla dynamodb")
	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(s.table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrColeccion), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String(attrID), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrColeccion), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrID), KeyType: types.KeyTypeRange},
		},
		// the change relay lambda only needs the keys
		StreamSpecification: &types.StreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: types.StreamViewTypeKeysOnly,
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb create %s: %w", s.table, err)
	}
	waiter := dynamodb.NewTableExistsWaiter(s.client)
	return waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, 2*time.Minute)
}

func (s *Store) Get(ctx context.Context, coleccion, id string) (store.Documento, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            clave(coleccion, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return store.Documento{}, err
	}
	if len(out.Item) == 0 {
		return store.Documento{}, fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	return itemADocumento(out.Item)
}

func (s *Store) Add(ctx context.Context, coleccion string, datos map[string]any) (string, error) {
	av, err := attributevalue.MarshalMap(codificarMapa(datos))
	if err != nil {
		return "", fmt.Errorf("dynamodb marshal: %w", err)
	}
	id := uuid.NewString()
	item := clave(coleccion, id)
	item[attrDatos] = &types.AttributeValueMemberM{Value: av}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": attrID,
		},
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, coleccion, id string, campos map[string]any) error {
	names := map[string]string{"#d": attrDatos, "#id": attrID}
	values := make(map[string]types.AttributeValue, len(campos))
	sets := make([]string, 0, len(campos))
	i := 0
	for k, v := range campos {
		av, err := attributevalue.Marshal(codificar(v))
		if err != nil {
			return fmt.Errorf("dynamodb marshal %s: %w", k, err)
		}
		n, val := "#f"+strconv.Itoa(i), ":f"+strconv.Itoa(i)
		names[n] = k
		values[val] = av
		sets = append(sets, "#d."+n+" = "+val)
		i++
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       clave(coleccion, id),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return fmt.Errorf("%s/%s: %w", coleccion, id, store.ErrNotFound)
	}
	return err
}

func (s *Store) Delete(ctx context.Context, coleccion, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       clave(coleccion, id),
	})
	return err
}

func (s *Store) Query(ctx context.Context, coleccion string, q store.Query) ([]store.Documento, error) {
	q = codificarQuery(q)
	input, err := buildQuery(s.table, coleccion, q)
	if err != nil {
		return nil, err
	}

	// Without a field ordering the sort key already gives the id order, so
	// DynamoDB resumes from the cursor and paging stops at the limit.
	nativo := q.OrderBy == ""

	docs := make([]store.Documento, 0)
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			d, err := itemADocumento(item)
			if err != nil {
				return nil, err
			}
			if nativo && !cumple(d.Datos, q.Where) {
				continue
			}
			docs = append(docs, d)
		}
		if nativo && q.Limit > 0 && len(docs) >= q.Limit {
			break
		}
	}

	if nativo {
		return store.Evaluar(docs, store.Query{Where: q.Where, Direccion: q.Direccion, Limit: q.Limit}), nil
	}
	return store.Evaluar(docs, q), nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	return err
}

func (s *Store) Close(context.Context) error { return nil }

// buildQuery turns q into the partition query. Equality clauses become the
// filter expression; the rest is left to store.Evaluar.
func buildQuery(table, coleccion string, q store.Query) (*dynamodb.QueryInput, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#c": attrColeccion,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: coleccion},
		},
		ConsistentRead: aws.Bool(true),
	}

	var filtros []string
	for i, cl := range q.Where {
		if cl.Operador != store.Igual {
			continue
		}
		av, err := attributevalue.Marshal(cl.Valor)
		if err != nil {
			return nil, fmt.Errorf("dynamodb marshal %s: %w", cl.Campo, err)
		}
		partes := []string{"#d"}
		for j, p := range strings.Split(cl.Campo, ".") {
			n := fmt.Sprintf("#w%d_%d", i, j)
			in.ExpressionAttributeNames[n] = p
			partes = append(partes, n)
		}
		val := ":w" + strconv.Itoa(i)
		in.ExpressionAttributeValues[val] = av
		filtros = append(filtros, strings.Join(partes, ".")+" = "+val)
	}
	if len(filtros) > 0 {
		in.ExpressionAttributeNames["#d"] = attrDatos
		in.FilterExpression = aws.String(strings.Join(filtros, " AND "))
	}

	if q.OrderBy == "" {
		in.ScanIndexForward = aws.Bool(q.Direccion != store.Desc)
		if q.After != nil {
			in.ExclusiveStartKey = clave(coleccion, q.After.ID)
		}
	}
	return in, nil
}

func clave(coleccion, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrColeccion: &types.AttributeValueMemberS{Value: coleccion},
		attrID:        &types.AttributeValueMemberS{Value: id},
	}
}

func itemADocumento(item map[string]types.AttributeValue) (store.Documento, error) {
	var doc store.Documento
	if v, ok := item[attrID].(*types.AttributeValueMemberS); ok {
		doc.ID = v.Value
	}
	doc.Datos = map[string]any{}
	if av, ok := item[attrDatos]; ok {
		if err := attributevalue.Unmarshal(av, &doc.Datos); err != nil {
			return store.Documento{}, fmt.Errorf("dynamodb unmarshal %s: %w", doc.ID, err)
		}
	}
	return doc, nil
}

// codificarQuery encodes the clause values and the cursor the same way the
// documents were stored so comparisons line up.
func codificarQuery(q store.Query) store.Query {
	where := make([]store.Clause, len(q.Where))
	for i, cl := range q.Where {
		cl.Valor = codificar(cl.Valor)
		where[i] = cl
	}
	q.Where = where
	if q.After != nil {
		after := *q.After
		after.Valor = codificar(after.Valor)
		q.After = &after
	}
	return q
}

func codificarMapa(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = codificar(v)
	}
	return out
}

func codificar(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(tiempoLayout)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(tiempoLayout)
	case map[string]any:
		return codificarMapa(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = codificar(e)
		}
		return out
	}
	return v
}

func cumple(datos map[string]any, where []store.Clause) bool {
	for _, cl := range where {
		if !store.Match(datos, cl) {
			return false
		}
	}
	return true
}
