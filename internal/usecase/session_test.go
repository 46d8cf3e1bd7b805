package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/goreporte/internal/domain"
	"github.com/iho/goreporte/internal/usecase"
)

type fetcherFunc func(ctx context.Context, input usecase.QueryInput) (*domain.RawReportPayload, error)

func (f fetcherFunc) FetchRaw(ctx context.Context, input usecase.QueryInput) (*domain.RawReportPayload, error) {
	return f(ctx, input)
}

func payloadOf(invoices ...domain.Invoice) *domain.RawReportPayload {
	return &domain.RawReportPayload{
		Username:     "elio",
		Directorio:   "abril",
		InvoiceCount: len(invoices),
		Invoices:     invoices,
	}
}

func TestUpdate_IgnoresStaleResults(t *testing.T) {
	s := usecase.Update(usecase.SessionState{}, usecase.SubmitStarted{Seq: 1})
	s = usecase.Update(s, usecase.SubmitAbandoned{Seq: 2})
	s = usecase.Update(s, usecase.SubmitStarted{Seq: 3})

	s = usecase.Update(s, usecase.SubmitSucceeded{Seq: 1, Payload: payloadOf(aprilInvoices()...)})
	assert.True(t, s.Loading)
	assert.Nil(t, s.Report)

	s = usecase.Update(s, usecase.SubmitFailed{Seq: 1, Message: "late failure"})
	assert.True(t, s.Loading)
	assert.Empty(t, s.Error)

	s = usecase.Update(s, usecase.SubmitSucceeded{Seq: 3, Payload: payloadOf(aprilInvoices()...)})
	assert.False(t, s.Loading)
	require.NotNil(t, s.Report)
	assert.True(t, s.Report.Total().Equal(dec("200")))
}

func TestUpdate_AdvanceChangeRecomputes(t *testing.T) {
	s := usecase.Update(usecase.SessionState{}, usecase.FieldsChanged{Username: "elio", Directorio: "abril", Anticipo: "200"})
	s = usecase.Update(s, usecase.SubmitStarted{Seq: 1})
	s = usecase.Update(s, usecase.SubmitSucceeded{Seq: 1, Payload: payloadOf(aprilInvoices()...)})
	require.NotNil(t, s.Report)
	assert.Equal(t, domain.Settled, s.Report.Classification())

	s = usecase.Update(s, usecase.FieldsChanged{Username: "elio", Directorio: "abril", Anticipo: "150"})
	require.NotNil(t, s.Report)
	assert.Equal(t, domain.ToCollect, s.Report.Classification())
	assert.True(t, s.Report.Magnitude().Equal(dec("50")))
}

func TestUpdate_FailureClearsReport(t *testing.T) {
	s := usecase.Update(usecase.SessionState{}, usecase.SubmitStarted{Seq: 1})
	s = usecase.Update(s, usecase.SubmitSucceeded{Seq: 1, Payload: payloadOf(aprilInvoices()...)})
	require.NotNil(t, s.Report)

	s = usecase.Update(s, usecase.SubmitStarted{Seq: 2})
	s = usecase.Update(s, usecase.SubmitFailed{Seq: 2, Message: ""})

	assert.False(t, s.Loading)
	assert.Nil(t, s.Report)
	assert.Nil(t, s.Payload)
	assert.Equal(t, domain.DefaultQueryErrorMessage, s.Error)
}

func TestUpdate_NilPayloadIsNotFound(t *testing.T) {
	s := usecase.Update(usecase.SessionState{}, usecase.SubmitStarted{Seq: 1})
	s = usecase.Update(s, usecase.SubmitSucceeded{Seq: 1})

	assert.False(t, s.Loading)
	assert.Nil(t, s.Report)
	assert.Equal(t, domain.DisplayMessage(domain.ErrReportNotFound), s.Error)
}

func TestSession_ValidationSkipsFetcher(t *testing.T) {
	called := false
	session := usecase.NewSession(fetcherFunc(func(context.Context, usecase.QueryInput) (*domain.RawReportPayload, error) {
		called = true
		return nil, nil
	}))

	session.SetFields("elio", "", "100")
	st, err := session.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, called)
	assert.False(t, st.Loading)
	assert.Equal(t, domain.MissingIdentifiersMessage, st.Error)
	assert.Nil(t, st.Report)
}

func TestSession_Submit(t *testing.T) {
	var got usecase.QueryInput
	session := usecase.NewSession(fetcherFunc(func(_ context.Context, input usecase.QueryInput) (*domain.RawReportPayload, error) {
		got = input
		return payloadOf(aprilInvoices()...), nil
	}))

	session.SetFields("elio", "abril", "275")
	st, err := session.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, usecase.QueryInput{Username: "elio", Directorio: "abril"}, got)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.NotNil(t, st.Report)
	assert.Equal(t, domain.ToPay, st.Report.Classification())
	assert.True(t, st.Report.Difference().Equal(dec("75")))
}

func TestSession_FailureProducesSingleMessage(t *testing.T) {
	session := usecase.NewSession(fetcherFunc(func(context.Context, usecase.QueryInput) (*domain.RawReportPayload, error) {
		return nil, &domain.QueryError{StatusCode: 500, Message: "Cosmos DB unavailable"}
	}))

	session.SetFields("elio", "abril", "")
	st, err := session.Submit(context.Background())

	assert.Error(t, err)
	assert.Equal(t, "Cosmos DB unavailable", st.Error)
	assert.Nil(t, st.Report)
	assert.False(t, st.Loading)
}

func TestSession_RejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	session := usecase.NewSession(fetcherFunc(func(context.Context, usecase.QueryInput) (*domain.RawReportPayload, error) {
		close(started)
		<-release
		return payloadOf(), nil
	}))
	session.SetFields("elio", "abril", "")

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(context.Background())
		done <- err
	}()
	<-started

	_, err := session.Submit(context.Background())
	assert.ErrorIs(t, err, usecase.ErrSubmissionInFlight)
	assert.True(t, session.State().Loading)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, session.State().Loading)
}

func TestSession_AbandonDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	calls := 0
	session := usecase.NewSession(fetcherFunc(func(context.Context, usecase.QueryInput) (*domain.RawReportPayload, error) {
		calls++
		n := calls
		started <- struct{}{}
		if n == 1 {
			<-release
			return nil, errors.New("first query failed late")
		}
		return payloadOf(aprilInvoices()...), nil
	}))
	session.SetFields("elio", "abril", "200")

	first := make(chan usecase.SessionState, 1)
	go func() {
		st, _ := session.Submit(context.Background())
		first <- st
	}()
	<-started

	st := session.Abandon()
	assert.False(t, st.Loading)

	st, err := session.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Report)

	close(release)
	late := <-first
	require.NotNil(t, late.Report)
	assert.Empty(t, late.Error)

	final := session.State()
	assert.Empty(t, final.Error)
	require.NotNil(t, final.Report)
	assert.Equal(t, domain.Settled, final.Report.Classification())
}
