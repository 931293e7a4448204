package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/vanshika/orders/backend/internal/domain"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoRepository.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// DynamoOptions configures OpenDynamo.
type DynamoOptions struct {
	Region   string
	Table    string
	Endpoint string
}

const dynamoKey = "transactionId"

type dynamoItem struct {
	TransactionID int64  `dynamodbav:"transactionId"`
	UserID        string `dynamodbav:"userId"`
	Order         string `dynamodbav:"order,omitempty"`
	PaymentMethod string `dynamodbav:"paymentMethod"`
	Payment       string `dynamodbav:"payment,omitempty"`
	Status        int    `dynamodbav:"status"`
	StatusName    string `dynamodbav:"statusName"`
	FraudStatus   bool   `dynamodbav:"fraudStatus"`
	StartTime     int64  `dynamodbav:"transactionStartTime"`
	EndTime       *int64 `dynamodbav:"transactionEndTime,omitempty"`
}

// DynamoRepository stores one item per transaction keyed by transactionId.
type DynamoRepository struct {
	api   DynamoAPI
	table string
}

// NewDynamoRepository wraps an existing client.
func NewDynamoRepository(api DynamoAPI, table string) *DynamoRepository {
	return &DynamoRepository{api: api, table: table}
}

// OpenDynamo loads the default AWS configuration and builds a repository. A
// non-empty Endpoint targets DynamoDB Local or another compatible service.
func OpenDynamo(ctx context.Context, opts DynamoOptions) (*DynamoRepository, error) {
	if opts.Table == "" {
		return nil, errors.New("dynamodb table name is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewDynamoRepository(client, opts.Table), nil
}

func (r *DynamoRepository) Store(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	assignID(tx)
	snap := tx.Snapshot()
	item, err := attributevalue.MarshalMap(dynamoItem{
		TransactionID: snap.TransactionID,
		UserID:        snap.UserID,
		Order:         rawToString(snap.Order),
		PaymentMethod: snap.PaymentMethod,
		Payment:       rawToString(snap.Payment),
		Status:        int(snap.Status),
		StatusName:    snap.Status.String(),
		FraudStatus:   snap.FraudStatus,
		StartTime:     snap.TransactionStartTime,
		EndTime:       snap.TransactionEndTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction %d: %w", tx.ID, err)
	}

	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("PutItem operation failed: %w", err)
	}
	return tx, nil
}

func (r *DynamoRepository) FindByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            map[string]types.AttributeValue{dynamoKey: idAttribute(id)},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem operation failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return domain.FromSnapshot(domain.Snapshot{
		TransactionID:        item.TransactionID,
		UserID:               item.UserID,
		Order:                stringToRaw(item.Order),
		PaymentMethod:        item.PaymentMethod,
		Payment:              stringToRaw(item.Payment),
		Status:               domain.Status(item.Status),
		FraudStatus:          item.FraudStatus,
		TransactionStartTime: item.StartTime,
		TransactionEndTime:   item.EndTime,
	})
}

// Ping checks that the table exists.
func (r *DynamoRepository) Ping(ctx context.Context) error {
	_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return fmt.Errorf("table %s does not exist", r.table)
		}
		return fmt.Errorf("error checking table: %w", err)
	}
	return nil
}

// EnsureTable creates the on-demand table when it is missing.
func (r *DynamoRepository) EnsureTable(ctx context.Context) error {
	_, err := r.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("error checking table: %w", err)
	}

	_, err = r.api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(dynamoKey), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(dynamoKey), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

func idAttribute(id int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)}
}
