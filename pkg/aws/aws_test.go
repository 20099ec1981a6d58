package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSQS struct {
	messages []sqstypes.Message
	deleted  []string
}

func (f *fakeSQS) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{Messages: f.messages}, nil
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, *in.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

func TestPollOnce_DeletesOnlyHandledMessages(t *testing.T) {
	api := &fakeSQS{messages: []sqstypes.Message{
		{Body: sdkaws.String(`ok`), ReceiptHandle: sdkaws.String("r1")},
		{Body: sdkaws.String(`bad`), ReceiptHandle: sdkaws.String("r2")},
		{ReceiptHandle: sdkaws.String("r3")},
	}}
	c := newSQSConsumer(api, "queue", zap.NewNop())

	n, err := c.PollOnce(context.Background(), func(_ context.Context, body string) error {
		if body == "bad" {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"r1"}, api.deleted)
}

func TestStartPolling_StopsOnCancel(t *testing.T) {
	c := newSQSConsumer(&fakeSQS{}, "queue", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.StartPolling(ctx, func(context.Context, string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeSNS struct{ input *sns.PublishInput }

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	return &sns.PublishOutput{}, nil
}

func TestSNSPublish(t *testing.T) {
	api := &fakeSNS{}
	c := &SNSClient{client: api}
	require.NoError(t, c.Publish(context.Background(), "arn:topic", []byte(`{"a":1}`)))
	assert.Equal(t, `{"a":1}`, *api.input.Message)
	assert.Error(t, c.Publish(context.Background(), "", nil))
}

type fakeSecrets struct{ calls int }

func (f *fakeSecrets) GetSecretValue(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	return &secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String(`{"POSTGRES_USER":"admin"}`)}, nil
}

func TestSecrets_CachedAndDecoded(t *testing.T) {
	api := &fakeSecrets{}
	s := newSecretsClient(api)
	m, err := s.GetSecretMap(context.Background(), "storefront/DB")
	require.NoError(t, err)
	assert.Equal(t, "admin", m["POSTGRES_USER"])
	_, _ = s.GetSecret(context.Background(), "storefront/DB")
	assert.Equal(t, 1, api.calls)
}

type fakeCloudWatch struct{ inputs []*cloudwatch.PutMetricDataInput }

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsClient(t *testing.T) {
	api := &fakeCloudWatch{}
	disabled := newMetricsClient(api, "", false)
	require.NoError(t, disabled.RecordCount(context.Background(), MetricOrdersMarkedPaid, nil))
	assert.Empty(t, api.inputs)

	enabled := newMetricsClient(api, "", true)
	require.NoError(t, enabled.RecordCount(context.Background(), MetricOrdersMarkedPaid, map[string]string{"b": "2", "a": "1"}))
	require.Len(t, api.inputs, 1)
	assert.Equal(t, "StorefrontAdmin", *api.inputs[0].Namespace)
	assert.Equal(t, "a", *api.inputs[0].MetricData[0].Dimensions[0].Name)

	var nilClient *MetricsClient
	assert.False(t, nilClient.IsEnabled())
}

type fakeLogs struct {
	events []string
}

func (f *fakeLogs) CreateLogGroup(context.Context, *cloudwatchlogs.CreateLogGroupInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	return nil, &cwltypes.ResourceAlreadyExistsException{}
}
func (f *fakeLogs) PutRetentionPolicy(context.Context, *cloudwatchlogs.PutRetentionPolicyInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error) {
	return &cloudwatchlogs.PutRetentionPolicyOutput{}, nil
}
func (f *fakeLogs) CreateLogStream(context.Context, *cloudwatchlogs.CreateLogStreamInput, ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	return &cloudwatchlogs.CreateLogStreamOutput{}, nil
}
func (f *fakeLogs) PutLogEvents(_ context.Context, in *cloudwatchlogs.PutLogEventsInput, _ ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	f.events = append(f.events, *in.LogEvents[0].Message)
	return &cloudwatchlogs.PutLogEventsOutput{}, nil
}

func TestCloudWatchLogsWriter(t *testing.T) {
	api := &fakeLogs{}
	w, err := newCloudWatchLogsWriter(context.Background(), api, "", "storefront-admin")
	require.NoError(t, err)

	n, err := w.Write([]byte(`{"msg":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, []string{`{"msg":"hi"}`}, api.events)
}

func TestPublicURLAndKey(t *testing.T) {
	base := "https://cdn.shop.test/"
	url := PublicURL(base, "products/p1/a.png")
	assert.Equal(t, "https://cdn.shop.test/products/p1/a.png", url)

	key, ok := KeyFromURL(base, url)
	assert.True(t, ok)
	assert.Equal(t, "products/p1/a.png", key)

	_, ok = KeyFromURL(base, "https://elsewhere.test/a.png")
	assert.False(t, ok)
}
