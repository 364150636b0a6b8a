package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"medchain/config"
	"medchain/internal/domain/constants"
	"medchain/internal/domain/entity"
	domainerrors "medchain/internal/domain/errors"
	"medchain/internal/domain/service"
	"medchain/internal/errors"
	"medchain/internal/usecase"

	"go.uber.org/fx"
)

const defaultPredictionWorkers = 4

type predictionService struct {
	wallet     service.WalletSession
	metadata   service.MetadataRecorder
	prediction service.PredictionClient
	logger     *slog.Logger
	workers    int
}

// PredictionParams holds dependencies for the prediction use case, injected by Fx
type PredictionParams struct {
	fx.In

	Config     *config.Config
	Wallet     service.WalletSession
	Metadata   service.MetadataRecorder
	Prediction service.PredictionClient
	Logger     *slog.Logger
}

// NewPredictionService creates the demand prediction use case
func NewPredictionService(params PredictionParams) usecase.PredictionUsecase {
	workers := defaultPredictionWorkers
	if params.Config.Prediction != nil && params.Config.Prediction.Workers > 0 {
		workers = params.Config.Prediction.Workers
	}

	return &predictionService{
		wallet:     params.Wallet,
		metadata:   params.Metadata,
		prediction: params.Prediction,
		logger:     params.Logger,
		workers:    workers,
	}
}

// EquipmentDemand predicts one quantity per known equipment name.
func (s *predictionService) EquipmentDemand(
	ctx context.Context,
	session entity.Session,
	hospitalEmail string,
	date entity.PredictionDate,
) ([]entity.Prediction, error) {
	if _, err := s.authorize(ctx, session, entity.ActionPredictEquipment); err != nil {
		return nil, err
	}
	hospitalEmail = strings.TrimSpace(hospitalEmail)
	if hospitalEmail == "" {
		return nil, domainerrors.Validation("hospital email is required")
	}

	names, err := s.equipmentNames(ctx)
	if err != nil {
		return nil, err
	}

	query := entity.EquipmentDemandQuery{
		HospitalEmail: hospitalEmail,
		Names:         names,
		Date:          entity.NormalizeDate(date.Day, date.Month, date.Year),
	}

	return s.fanOut(ctx, query.Names, func(ctx context.Context, name string) (float64, error) {
		return s.prediction.EquipmentDemand(ctx, query.HospitalEmail, name, query.Date)
	})
}

// RawMaterialDemand predicts one quantity per known raw material name for the session's supplier.
func (s *predictionService) RawMaterialDemand(
	ctx context.Context,
	session entity.Session,
	manufacturerEmail string,
	date entity.PredictionDate,
) ([]entity.Prediction, error) {
	ledger, err := s.authorize(ctx, session, entity.ActionPredictRawMaterial)
	if err != nil {
		return nil, err
	}
	manufacturerEmail = strings.TrimSpace(manufacturerEmail)
	if manufacturerEmail == "" {
		return nil, domainerrors.Validation("manufacturer email is required")
	}

	supplierEmail := ""
	if user, err := (contractViews{ledger: ledger, from: session.Identity}).userDetails(ctx, session.Identity); err == nil {
		supplierEmail = user.EmailID
	}
	if supplierEmail == "" && session.Profile != nil {
		supplierEmail = session.Profile.Email
	}
	if supplierEmail == "" {
		return nil, domainerrors.Validation("supplier email is unknown for %s", session.Identity)
	}

	names, err := s.rawMaterialNames(ctx)
	if err != nil {
		return nil, err
	}

	query := entity.RawMaterialDemandQuery{
		SupplierEmail:     supplierEmail,
		ManufacturerEmail: manufacturerEmail,
		Names:             names,
		Date:              entity.NormalizeDate(date.Day, date.Month, date.Year),
	}

	return s.fanOut(ctx, query.Names, func(ctx context.Context, name string) (float64, error) {
		return s.prediction.RawMaterialDemand(ctx, query.SupplierEmail, query.ManufacturerEmail, name, query.Date)
	})
}

func (s *predictionService) authorize(ctx context.Context, session entity.Session, action entity.Action) (service.Ledger, error) {
	if !session.Connected() {
		return nil, domainerrors.ErrWalletUnavailable
	}
	ledger, ok := s.wallet.LedgerHandle()
	if !ok {
		return nil, domainerrors.ErrWalletUnavailable
	}
	if _, err := authorize(ctx, ledger, session, action); err != nil {
		return nil, err
	}

	return ledger, nil
}

func (s *predictionService) equipmentNames(ctx context.Context) ([]string, error) {
	records, err := s.metadata.Query(ctx, constants.EndpointEquipmentNames, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		var name string
		if err := record.Decode(&name); err != nil {
			// Some deployments return {name} objects instead of bare strings.
			var doc struct {
				Name string `json:"name"`
			}
			if err := record.Decode(&doc); err != nil {
				return nil, domainerrors.NewBackendUnavailableError(constants.EndpointEquipmentNames, 0, err)
			}
			name = doc.Name
		}
		names = appendName(names, name)
	}

	return names, nil
}

func (s *predictionService) rawMaterialNames(ctx context.Context) ([]string, error) {
	lots, err := queryAs[entity.RawMaterialLot](ctx, s.metadata, constants.EndpointRawAll, nil)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(lots))
	for _, lot := range lots {
		names = appendName(names, lot.Name)
	}

	return names, nil
}

func appendName(names []string, name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return names
	}
	for _, existing := range names {
		if existing == name {
			return names
		}
	}

	return append(names, name)
}

type predictFunc func(ctx context.Context, name string) (float64, error)

type predictionWithIndex struct {
	index  int
	result entity.Prediction
}

// fanOut runs one prediction per name on a bounded worker pool. Results keep the
// order of names. A failed name reports 0 and does not fail the others.
func (s *predictionService) fanOut(ctx context.Context, names []string, predict predictFunc) ([]entity.Prediction, error) {
	results := make([]entity.Prediction, len(names))
	if len(names) == 0 {
		return results, nil
	}

	started := time.Now()
	nameCh := make(chan int, len(names))
	resultCh := make(chan predictionWithIndex, len(names))

	workerGroup := s.spawnPredictionWorkers(ctx, s.workerCount(len(names)), nameCh, resultCh, names, predict)

	go dispatchPredictionWork(ctx, nameCh, len(names))
	collectPredictions(resultCh, results, workerGroup)

	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), "prediction fan-out canceled")
	}

	// Slots a cancelled worker never reached still carry their name.
	for i := range results {
		results[i].Name = names[i]
	}

	s.logger.Debug("Predictions collected",
		slog.Int("names", len(names)),
		slog.Duration("elapsed", time.Since(started)),
	)

	return results, nil
}

func (s *predictionService) workerCount(nameCount int) int {
	if nameCount < s.workers {
		return nameCount
	}

	return s.workers
}

func (s *predictionService) spawnPredictionWorkers(
	ctx context.Context,
	workerCount int,
	nameCh <-chan int,
	resultCh chan<- predictionWithIndex,
	names []string,
	predict predictFunc,
) *sync.WaitGroup {
	var workerGroup sync.WaitGroup

	for range workerCount {
		workerGroup.Add(1)
		go func() {
			defer workerGroup.Done()
			for idx := range nameCh {
				if ctx.Err() != nil {
					return
				}

				qty, err := predict(ctx, names[idx])
				if err != nil {
					s.logger.Warn("Prediction failed",
						slog.String("name", names[idx]),
						slog.Any("error", err),
					)
					qty = 0
				}
				resultCh <- predictionWithIndex{index: idx, result: entity.Prediction{Name: names[idx], Quantity: qty}}
			}
		}()
	}

	return &workerGroup
}

func dispatchPredictionWork(ctx context.Context, nameCh chan<- int, nameCount int) {
	defer close(nameCh)

	for i := range nameCount {
		if ctx.Err() != nil {
			return
		}

		nameCh <- i
	}
}

func collectPredictions(resultCh chan predictionWithIndex, results []entity.Prediction, workerGroup *sync.WaitGroup) {
	go func() {
		workerGroup.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		results[res.index] = res.result
	}
}
