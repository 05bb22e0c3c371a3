package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"leaseline.app/leaseline/common/id"
	"leaseline.app/leaseline/common/llm"
	"leaseline.app/leaseline/core/config"
	"leaseline.app/leaseline/internal/engine"
	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/lock"
	"leaseline.app/leaseline/internal/model"
	"leaseline.app/leaseline/internal/service"
	"leaseline.app/leaseline/internal/store"
)

func intPtr(v int) *int { return &v }

var _ = Describe("NegotiationService", func() {
	var (
		svc       service.NegotiationService
		mockStore *mockNegotiationStore
		analysis  *mockLLM
		letters   *mockLLM
		est       *stubEstimator
		ctx       context.Context
	)

	newService := func() service.NegotiationService {
		eng := engine.New(analysis, letters, config.EngineConfig{
			MaxStepDown: 100,
			CompSpread:  0.10,
		})
		return service.NewNegotiationService(mockStore, eng, est, lock.NewLocalLocker())
	}

	storedNegotiation := func(currentRent, target int, status model.Status) *model.Negotiation {
		neg := &model.Negotiation{
			ID:                42,
			TenantName:        "Jordan Smith",
			TenantEmail:       "jordan@example.com",
			Address:           "12 Elm St",
			City:              "Austin",
			State:             "TX",
			Zipcode:           "78701",
			CurrentRent:       currentRent,
			InitialTargetRent: target,
			CurrentTargetRent: target,
			Status:            status,
		}
		neg.Append(model.RoleManager, "opening letter", time.Now())
		return neg
	}

	BeforeEach(func() {
		ctx = context.Background()
		mockStore = &mockNegotiationStore{}
		analysis = &mockLLM{}
		letters = &mockLLM{}
		est = &stubEstimator{estimate: estimator.Estimate{
			Amount:     2750,
			Source:     estimator.SourceFallback,
			Confidence: estimator.ConfidenceLow,
		}}

		err := id.Init(1)
		Expect(err).NotTo(HaveOccurred())

		svc = newService()
	})

	Describe("Start", func() {
		It("creates the negotiation with the opening letter already on file", func() {
			var captured *model.Negotiation
			mockStore.createFn = func(_ context.Context, neg *model.Negotiation) error {
				captured = neg
				return nil
			}

			res, err := svc.Start(ctx, service.StartParams{
				TenantName:  "Jordan Smith",
				TenantEmail: "jordan@example.com",
				City:        "Austin",
				CurrentRent: 2500,
				TargetRent:  intPtr(2800),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.TargetRent).To(Equal(2800))
			Expect(res.Letter).NotTo(BeEmpty())
			Expect(res.Estimate).To(BeNil())

			Expect(captured).NotTo(BeNil())
			Expect(captured.ID).NotTo(BeZero())
			Expect(captured.InitialTargetRent).To(Equal(2800))
			Expect(captured.CurrentTargetRent).To(Equal(2800))
			Expect(captured.Status).To(Equal(model.StatusCountered))
			Expect(captured.History).To(HaveLen(1))
			Expect(captured.History[0].Role).To(Equal(model.RoleManager))
			Expect(captured.History[0].Content).To(Equal(res.Letter))
			Expect(mockStore.createCalls).To(Equal(1))
		})

		It("never discloses the target figure in the opening letter", func() {
			res, err := svc.Start(ctx, service.StartParams{
				TenantEmail: "jordan@example.com",
				City:        "Austin",
				CurrentRent: 2500,
				TargetRent:  intPtr(3000),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Letter).NotTo(ContainSubstring("$3000"))
			Expect(res.Letter).To(ContainSubstring("$2700"))
			Expect(res.Letter).To(ContainSubstring("$3300"))
		})

		It("asks for the estimate when no target is provided", func() {
			est.estimate = estimator.Estimate{
				Amount:     2900,
				Source:     estimator.SourceAI,
				Confidence: estimator.ConfidenceMedium,
			}

			res, err := svc.Start(ctx, service.StartParams{
				TenantEmail: "jordan@example.com",
				CurrentRent: 2500,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.TargetRent).To(Equal(2900))
			Expect(res.Estimate).NotTo(BeNil())
			Expect(res.Estimate.Source).To(Equal(estimator.SourceAI))
		})

		It("opens at the current rent when the estimate falls below it", func() {
			est.estimate = estimator.Estimate{
				Amount:     2000,
				Source:     estimator.SourceAI,
				Confidence: estimator.ConfidenceMedium,
			}

			var captured *model.Negotiation
			mockStore.createFn = func(_ context.Context, neg *model.Negotiation) error {
				captured = neg
				return nil
			}

			res, err := svc.Start(ctx, service.StartParams{
				TenantEmail: "jordan@example.com",
				CurrentRent: 2500,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.TargetRent).To(Equal(2500))
			Expect(captured.InitialTargetRent).To(Equal(2500))
			Expect(captured.CurrentTargetRent).To(Equal(2500))
			Expect(captured.CurrentTargetRent).To(BeNumerically(">=", captured.CurrentRent))
		})

		It("opens at the current rent when the provided target falls below it", func() {
			var captured *model.Negotiation
			mockStore.createFn = func(_ context.Context, neg *model.Negotiation) error {
				captured = neg
				return nil
			}

			res, err := svc.Start(ctx, service.StartParams{
				TenantEmail: "jordan@example.com",
				CurrentRent: 2500,
				TargetRent:  intPtr(2200),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.TargetRent).To(Equal(2500))
			Expect(captured.CurrentTargetRent).To(Equal(2500))
		})

		It("rejects a missing email", func() {
			_, err := svc.Start(ctx, service.StartParams{CurrentRent: 2500})
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})

		It("rejects a non-positive current rent", func() {
			_, err := svc.Start(ctx, service.StartParams{TenantEmail: "jordan@example.com"})
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})

		It("propagates store failures", func() {
			mockStore.createFn = func(_ context.Context, _ *model.Negotiation) error {
				return errors.New("database connection failed")
			}

			_, err := svc.Start(ctx, service.StartParams{
				TenantEmail: "jordan@example.com",
				CurrentRent: 2500,
				TargetRent:  intPtr(2800),
			})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("database connection failed"))
		})
	})

	Describe("Continue", func() {
		It("appends the tenant message before the decision call sees the history", func() {
			neg := storedNegotiation(2500, 2800, model.StatusCountered)
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return neg, nil
			}

			var sawTenantMessage bool
			analysis.chatFn = func(_ context.Context, req llm.Request, result any) (*llm.Response, error) {
				for _, m := range req.Messages {
					if m.Role == "user" && m.Content == "how about 2600?" {
						sawTenantMessage = true
					}
				}
				*(result.(*engine.Analysis)) = engine.Analysis{
					TenantOffer:        intPtr(2600),
					TenantIntent:       engine.IntentCountering,
					RecommendedCounter: intPtr(2700),
				}
				return &llm.Response{}, nil
			}

			res, err := svc.Continue(ctx, "jordan@example.com", "how about 2600?")

			Expect(err).NotTo(HaveOccurred())
			Expect(sawTenantMessage).To(BeTrue())
			Expect(res.Status).To(Equal(model.StatusCountered))
			Expect(*res.ManagementOffer).To(Equal(2700))
			Expect(*res.TenantOffer).To(Equal(2600))
			Expect(mockStore.saveCalls).To(Equal(1))

			Expect(neg.History).To(HaveLen(3))
			Expect(neg.History[1].Role).To(Equal(model.RoleTenant))
			Expect(neg.History[2].Role).To(Equal(model.RoleManager))
			Expect(neg.History[2].Content).To(Equal(res.Letter))
		})

		It("closes the negotiation when the tenant accepts the position", func() {
			neg := storedNegotiation(2500, 2800, model.StatusCountered)
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return neg, nil
			}
			analysis.chatFn = func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
				*(result.(*engine.Analysis)) = engine.Analysis{
					TenantIntent: engine.IntentAccepting,
					ShouldAccept: true,
				}
				return &llm.Response{}, nil
			}

			res, err := svc.Continue(ctx, "jordan@example.com", "that works for me")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(model.StatusAccepted))
			Expect(*res.AgreedRent).To(Equal(2800))
			Expect(neg.Status).To(Equal(model.StatusAccepted))
		})

		It("rejects messages to a closed negotiation", func() {
			neg := storedNegotiation(2500, 2800, model.StatusAccepted)
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return neg, nil
			}

			_, err := svc.Continue(ctx, "jordan@example.com", "actually, one more thing")

			Expect(errors.Is(err, service.ErrNegotiationClosed)).To(BeTrue())
			Expect(mockStore.saveCalls).To(BeZero())
		})

		It("propagates not-found from the store", func() {
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return nil, store.ErrNotFound
			}

			_, err := svc.Continue(ctx, "nobody@example.com", "hello?")
			Expect(errors.Is(err, store.ErrNotFound)).To(BeTrue())
		})

		It("records an error status when letter rendering fails, keeping the position", func() {
			neg := storedNegotiation(2500, 2800, model.StatusCountered)
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return neg, nil
			}
			analysis.chatFn = func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
				*(result.(*engine.Analysis)) = engine.Analysis{
					TenantIntent:       engine.IntentCountering,
					TenantOffer:        intPtr(2600),
					RecommendedCounter: intPtr(2700),
				}
				return &llm.Response{}, nil
			}
			letters.completeFn = func(_ context.Context, _ llm.TextRequest) (string, error) {
				return "", errors.New("model unavailable")
			}

			_, err := svc.Continue(ctx, "jordan@example.com", "how about 2600?")

			Expect(err).To(HaveOccurred())
			Expect(neg.Status).To(Equal(model.StatusError))
			Expect(neg.CurrentTargetRent).To(Equal(2800))
			Expect(mockStore.saveCalls).To(Equal(1))

			Expect(neg.History).To(HaveLen(2))
			Expect(neg.History[1].Role).To(Equal(model.RoleTenant))
		})

		It("still advances after a recorded error on retry", func() {
			neg := storedNegotiation(2500, 2800, model.StatusError)
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return neg, nil
			}
			analysis.chatFn = func(_ context.Context, _ llm.Request, result any) (*llm.Response, error) {
				*(result.(*engine.Analysis)) = engine.Analysis{
					TenantIntent: engine.IntentAccepting,
					ShouldAccept: true,
				}
				return &llm.Response{}, nil
			}

			res, err := svc.Continue(ctx, "jordan@example.com", "deal")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(model.StatusAccepted))
		})

		It("falls back to deterministic analysis when the decision call fails", func() {
			neg := storedNegotiation(2500, 2800, model.StatusCountered)
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return neg, nil
			}
			analysis.chatFn = func(_ context.Context, _ llm.Request, _ any) (*llm.Response, error) {
				return nil, errors.New("model unavailable")
			}

			res, err := svc.Continue(ctx, "jordan@example.com", "I could manage $2,650 a month")

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(model.StatusCountered))
			Expect(*res.TenantOffer).To(Equal(2650))
			Expect(*res.ManagementOffer).To(Equal(2800))
		})

		It("rejects an empty message", func() {
			_, err := svc.Continue(ctx, "jordan@example.com", "")
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})
	})

	Describe("Context", func() {
		It("returns the record without mutating it", func() {
			neg := storedNegotiation(2500, 2800, model.StatusCountered)
			mockStore.getLatestByEmailFn = func(_ context.Context, _ string) (*model.Negotiation, error) {
				return neg, nil
			}

			got, err := svc.Context(ctx, "jordan@example.com")

			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(neg))
			Expect(got.History).To(HaveLen(1))
			Expect(mockStore.saveCalls).To(BeZero())
		})

		It("rejects a missing email", func() {
			_, err := svc.Context(ctx, "")
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})
	})

	Describe("EstimateRent", func() {
		It("returns the chain estimate", func() {
			got, err := svc.EstimateRent(ctx, estimator.Request{CurrentRent: 2500})

			Expect(err).NotTo(HaveOccurred())
			Expect(got.Amount).To(Equal(2750))
			Expect(got.Source).To(Equal(estimator.SourceFallback))
		})

		It("rejects a non-positive current rent", func() {
			_, err := svc.EstimateRent(ctx, estimator.Request{})
			Expect(errors.Is(err, service.ErrValidation)).To(BeTrue())
		})
	})
})
