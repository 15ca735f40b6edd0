package projects

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raedalotaibi/mashary-backend/internal/activity"
	"github.com/raedalotaibi/mashary-backend/pkg/db/models"
	"github.com/raedalotaibi/mashary-backend/pkg/enums"
	pkgerrors "github.com/raedalotaibi/mashary-backend/pkg/errors"
	"github.com/raedalotaibi/mashary-backend/pkg/logger"
	"github.com/raedalotaibi/mashary-backend/pkg/outbox"
	"github.com/raedalotaibi/mashary-backend/pkg/pagination"
	redislock "github.com/raedalotaibi/mashary-backend/pkg/redis"
)

type memRepo struct {
	project     *models.Project
	vehicles    []models.Vehicle
	manpower    []models.ProjectManpower
	materials   []models.ProjectMaterial
	items       []models.ProjectAdditionalMaterialItem
	assets      []models.ProjectAsset
	assignments map[uuid.UUID]struct{}
}

func newMemRepo(project *models.Project) *memRepo {
	return &memRepo{project: project, assignments: map[uuid.UUID]struct{}{}}
}

func (r *memRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *memRepo) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	clone := *project
	r.project = &clone
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if r.project == nil || r.project.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *r.project
	return &clone, nil
}

func (r *memRepo) GetDraft(ctx context.Context) (*models.Project, error) {
	if r.project == nil || r.project.IsCompleted {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *r.project
	return &clone, nil
}

func (r *memRepo) List(ctx context.Context, params listParams) ([]models.Project, *pagination.Cursor, error) {
	if r.project == nil {
		return nil, nil, nil
	}
	return []models.Project{*r.project}, nil, nil
}

func (r *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.project == nil || r.project.ID != id {
		return gorm.ErrRecordNotFound
	}
	r.project = nil
	return nil
}

func (r *memRepo) SaveGuarded(ctx context.Context, project *models.Project) error {
	if r.project == nil || r.project.ID != project.ID {
		return gorm.ErrRecordNotFound
	}
	if r.project.Version != project.Version {
		return pkgerrors.New(pkgerrors.CodeConflict, "project was modified concurrently")
	}
	project.Version++
	clone := *project
	r.project = &clone
	return nil
}

func (r *memRepo) ReplaceVehicles(ctx context.Context, project *models.Project, vehicles []models.Vehicle) error {
	r.vehicles = vehicles
	return nil
}

func (r *memRepo) ListManpower(ctx context.Context, projectID uuid.UUID) ([]models.ProjectManpower, error) {
	return append([]models.ProjectManpower(nil), r.manpower...), nil
}

func (r *memRepo) GetManpowerLine(ctx context.Context, projectID, lineID uuid.UUID) (*models.ProjectManpower, error) {
	for i := range r.manpower {
		if r.manpower[i].ID == lineID && r.manpower[i].ProjectID == projectID {
			clone := r.manpower[i]
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) CreateManpowerLine(ctx context.Context, row *models.ProjectManpower) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	r.manpower = append(r.manpower, *row)
	return nil
}

func (r *memRepo) SaveManpowerLine(ctx context.Context, row *models.ProjectManpower) error {
	for i := range r.manpower {
		if r.manpower[i].ID == row.ID {
			r.manpower[i] = *row
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memRepo) DeleteManpowerLine(ctx context.Context, projectID, lineID uuid.UUID) error {
	for i := range r.manpower {
		if r.manpower[i].ID == lineID && r.manpower[i].ProjectID == projectID {
			r.manpower = append(r.manpower[:i], r.manpower[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memRepo) ReplaceMaterials(ctx context.Context, projectID uuid.UUID, materials []models.ProjectMaterial, items []models.ProjectAdditionalMaterialItem) error {
	r.materials = materials
	r.items = items
	return nil
}

func (r *memRepo) ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.ProjectAsset, error) {
	return append([]models.ProjectAsset(nil), r.assets...), nil
}

func (r *memRepo) AddAssets(ctx context.Context, rows []models.ProjectAsset) error {
	r.assets = append(r.assets, rows...)
	return nil
}

func (r *memRepo) RemoveAssets(ctx context.Context, projectID uuid.UUID, assetIDs []uuid.UUID) error {
	drop := make(map[uuid.UUID]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		drop[id] = struct{}{}
	}
	kept := r.assets[:0]
	for _, row := range r.assets {
		if _, ok := drop[row.AssetID]; !ok {
			kept = append(kept, row)
		}
	}
	r.assets = kept
	return nil
}

func (r *memRepo) SyncAssignments(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	next := make(map[uuid.UUID]struct{}, len(userIDs))
	added := make([]uuid.UUID, 0)
	for _, id := range userIDs {
		next[id] = struct{}{}
		if _, ok := r.assignments[id]; !ok {
			added = append(added, id)
		}
	}
	r.assignments = next
	return added, nil
}

func (r *memRepo) HasAssignment(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	_, ok := r.assignments[userID]
	return ok, nil
}

func (r *memRepo) ListAssignedUserIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.assignments))
	for id := range r.assignments {
		ids = append(ids, id)
	}
	return ids, nil
}

type immediateTx struct{}

func (immediateTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubLocks struct{ err error }

func (s stubLocks) Acquire(ctx context.Context, scope, id string) (func(), error) {
	if s.err != nil {
		return nil, s.err
	}
	return func() {}, nil
}

type stubCatalog struct {
	vehicles  map[uuid.UUID]models.Vehicle
	manpower  map[uuid.UUID]models.Manpower
	materials map[uuid.UUID]models.Material
	items     map[uuid.UUID]models.AdditionalMaterialItem
	assets    map[uuid.UUID]models.Asset
	client    *models.Client
	users     map[uuid.UUID]models.User
}

func (c *stubCatalog) FindVehiclesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vehicle, error) {
	rows := make([]models.Vehicle, 0, len(ids))
	for _, id := range ids {
		row, ok := c.vehicles[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown vehicle ids")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *stubCatalog) FindManpowerByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Manpower, error) {
	rows := make([]models.Manpower, 0, len(ids))
	for _, id := range ids {
		row, ok := c.manpower[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown manpower ids")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *stubCatalog) FindMaterialsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Material, error) {
	rows := make([]models.Material, 0, len(ids))
	for _, id := range ids {
		row, ok := c.materials[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown material ids")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *stubCatalog) FindAdditionalItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.AdditionalMaterialItem, error) {
	rows := make([]models.AdditionalMaterialItem, 0, len(ids))
	for _, id := range ids {
		row, ok := c.items[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown additional item ids")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *stubCatalog) FindAssetsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Asset, error) {
	rows := make([]models.Asset, 0, len(ids))
	for _, id := range ids {
		row, ok := c.assets[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown asset ids")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (c *stubCatalog) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if c.client == nil || c.client.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown client id")
	}
	return c.client, nil
}

func (c *stubCatalog) FindUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	rows := make([]models.User, 0, len(ids))
	for _, id := range ids {
		row, ok := c.users[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown user ids")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type stubConversions struct {
	err   error
	calls int
}

func (s *stubConversions) MarkConverted(ctx context.Context, tx *gorm.DB, source enums.ConversionSource, id uuid.UUID, now time.Time) error {
	s.calls++
	return s.err
}

type recordedActivity struct{ entries []activity.Entry }

func (r *recordedActivity) Record(ctx context.Context, tx *gorm.DB, entry activity.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordedActivity) has(action enums.ActivityAction) bool {
	for _, entry := range r.entries {
		if entry.Action == action {
			return true
		}
	}
	return false
}

type recordedEvents struct{ events []outbox.DomainEvent }

func (r *recordedEvents) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) has(eventType enums.OutboxEventType) bool {
	for _, event := range r.events {
		if event.EventType == eventType {
			return true
		}
	}
	return false
}

type fixture struct {
	svc         Service
	mp          ManpowerService
	repo        *memRepo
	catalog     *stubCatalog
	conversions *stubConversions
	activity    *recordedActivity
	events      *recordedEvents
}

func newFixture(t *testing.T, project *models.Project) *fixture {
	t.Helper()

	repo := newMemRepo(project)
	catalog := &stubCatalog{
		vehicles:  map[uuid.UUID]models.Vehicle{},
		manpower:  map[uuid.UUID]models.Manpower{},
		materials: map[uuid.UUID]models.Material{},
		items:     map[uuid.UUID]models.AdditionalMaterialItem{},
		assets:    map[uuid.UUID]models.Asset{},
		users:     map[uuid.UUID]models.User{},
	}
	recorder := &recordedActivity{}
	events := &recordedEvents{}
	conversions := &stubConversions{}
	logg := logger.New(logger.Options{ServiceName: "projects-test", Output: io.Discard})

	svc, err := NewService(repo, immediateTx{}, stubLocks{}, catalog, conversions, recorder, events, logg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	mp, err := NewManpowerService(svc)
	if err != nil {
		t.Fatalf("build manpower service: %v", err)
	}

	return &fixture{svc: svc, mp: mp, repo: repo, catalog: catalog, conversions: conversions, activity: recorder, events: events}
}

func adminPrincipal() Principal {
	return Principal{UserID: uuid.New(), Role: enums.RoleAdmin}
}

func draftProject() *models.Project {
	return &models.Project{
		ID:           uuid.New(),
		Name:         "Substation retrofit",
		Category:     enums.ProjectCategoryDirect,
		ClientID:     uuid.New(),
		DurationDays: 15,
		BuildStage:   enums.BuildStageBasicInfo,
	}
}

func TestAssociateVehiclesProRatesMonthlyCost(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	vehicleID := uuid.New()
	f.catalog.vehicles[vehicleID] = models.Vehicle{
		ID:                     vehicleID,
		RentCost:               dec("2000"),
		GasCost:                dec("500"),
		OilCost:                dec("300"),
		RegularMaintenanceCost: dec("200"),
	}

	got, err := f.svc.AssociateVehicles(context.Background(), adminPrincipal(), project.ID, []uuid.UUID{vehicleID})
	if err != nil {
		t.Fatalf("associate vehicles: %v", err)
	}

	if !got.TotalCarRent.Equal(dec("3000")) {
		t.Fatalf("total car rent = %s, want 3000", got.TotalCarRent)
	}
	if !got.TotalCarRentPerDuration.Equal(dec("1500")) {
		t.Fatalf("pro-rated rent = %s, want 1500 for 15 of 30 days", got.TotalCarRentPerDuration)
	}
	if got.BuildStage != enums.BuildStageVehicles {
		t.Fatalf("build stage = %s, want vehicles", got.BuildStage)
	}
	if !f.events.has(enums.EventProjectUpdated) {
		t.Fatal("expected a project_updated event")
	}
	if !f.activity.has(enums.ActivityVehiclesAssociated) {
		t.Fatal("expected a vehicles_associated activity entry")
	}
}

func TestAssociateVehiclesEmptyListClearsTotals(t *testing.T) {
	project := draftProject()
	project.TotalCarRent = dec("3000")
	project.TotalCarRentPerDuration = dec("1500")
	f := newFixture(t, project)

	got, err := f.svc.AssociateVehicles(context.Background(), adminPrincipal(), project.ID, nil)
	if err != nil {
		t.Fatalf("associate vehicles: %v", err)
	}
	if !got.TotalCarRent.IsZero() || !got.TotalCarRentPerDuration.IsZero() {
		t.Fatalf("totals not cleared: %s / %s", got.TotalCarRent, got.TotalCarRentPerDuration)
	}
}

func TestManpowerAddAppliesMissionWeight(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	manpowerID := uuid.New()
	f.catalog.manpower[manpowerID] = models.Manpower{ID: manpowerID, DailyCost: dec("100")}

	got, err := f.mp.Add(context.Background(), adminPrincipal(), project.ID, ManpowerLineInput{
		ManpowerID:        manpowerID,
		EstimatedWorkDays: 10,
		Mission:           []enums.MissionType{enums.MissionOutsideCity},
	})
	if err != nil {
		t.Fatalf("add manpower: %v", err)
	}

	if len(f.repo.manpower) != 1 {
		t.Fatalf("manpower rows = %d, want 1", len(f.repo.manpower))
	}
	if !f.repo.manpower[0].DurationCost.Equal(dec("1500")) {
		t.Fatalf("duration cost = %s, want 100 * 10 * 1.5 = 1500", f.repo.manpower[0].DurationCost)
	}
	if got.BuildStage != enums.BuildStageManpower {
		t.Fatalf("build stage = %s, want manpower", got.BuildStage)
	}
	if !got.ManpowerTotalCost.Equal(dec("1500")) {
		t.Fatalf("manpower total = %s, want 1500", got.ManpowerTotalCost)
	}
}

func TestManpowerUpdateKeepsDurationCostWhenInputsUntouched(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	line := models.ProjectManpower{
		ID:                uuid.New(),
		ProjectID:         project.ID,
		EstimatedWorkDays: 10,
		DurationCost:      dec("1500"),
	}
	line.SetMissionTags([]enums.MissionType{enums.MissionOutsideCity})
	f.repo.manpower = append(f.repo.manpower, line)

	actual := 8
	if _, err := f.mp.Update(context.Background(), adminPrincipal(), project.ID, line.ID, ManpowerLineUpdateInput{
		ActualWorkDays: &actual,
	}); err != nil {
		t.Fatalf("update manpower: %v", err)
	}

	if !f.repo.manpower[0].DurationCost.Equal(dec("1500")) {
		t.Fatalf("duration cost re-derived on actual-days-only update: %s", f.repo.manpower[0].DurationCost)
	}
	if f.repo.manpower[0].ActualWorkDays != 8 {
		t.Fatalf("actual work days = %d, want 8", f.repo.manpower[0].ActualWorkDays)
	}
}

func TestManpowerRemoveUnknownLine(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	_, err := f.mp.Remove(context.Background(), adminPrincipal(), project.ID, uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestAssociateMaterialsSharesGroupCostPerUnit(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	groupID := uuid.New()
	firstID, secondID := uuid.New(), uuid.New()
	f.catalog.materials[firstID] = models.Material{
		ID: firstID, UnitPrice: dec("10"), Quantity: 2, AdditionalMaterialID: &groupID,
	}
	f.catalog.materials[secondID] = models.Material{
		ID: secondID, UnitPrice: dec("20"), Quantity: 3, AdditionalMaterialID: &groupID,
	}
	itemID := uuid.New()
	f.catalog.items[itemID] = models.AdditionalMaterialItem{ID: itemID, GroupID: groupID, Price: dec("25")}

	got, err := f.svc.AssociateMaterials(context.Background(), adminPrincipal(), project.ID, MaterialsInput{
		MaterialIDs:    []uuid.UUID{firstID, secondID},
		MaterialMargin: dec("0"),
		AdditionalItems: map[uuid.UUID][]AdditionalItemSelection{
			groupID: {{ItemID: itemID, Quantity: 2}},
		},
	})
	if err != nil {
		t.Fatalf("associate materials: %v", err)
	}

	if len(f.repo.materials) != 2 {
		t.Fatalf("material rows = %d, want 2", len(f.repo.materials))
	}
	// Pool of 50 spread over 5 catalog units: both rows carry 10 per unit.
	for i, row := range f.repo.materials {
		if !row.AdditionalMaterialPrice.Equal(dec("10")) {
			t.Fatalf("row %d additional per unit = %s, want 10", i, row.AdditionalMaterialPrice)
		}
	}
	if !f.repo.materials[0].TotalMaterialCost.Equal(dec("40")) {
		t.Fatalf("row 0 total = %s, want (10+10)*2 = 40", f.repo.materials[0].TotalMaterialCost)
	}
	if !f.repo.materials[1].TotalMaterialCost.Equal(dec("90")) {
		t.Fatalf("row 1 total = %s, want (20+10)*3 = 90", f.repo.materials[1].TotalMaterialCost)
	}
	if !got.TotalMaterialCost.Equal(dec("130")) {
		t.Fatalf("project material total = %s, want 130", got.TotalMaterialCost)
	}
	if got.BuildStage != enums.BuildStageMaterials {
		t.Fatalf("build stage = %s, want materials", got.BuildStage)
	}
}

func TestAssociateMaterialsRejectsForeignGroupItem(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	materialID := uuid.New()
	groupID := uuid.New()
	f.catalog.materials[materialID] = models.Material{
		ID: materialID, UnitPrice: dec("10"), Quantity: 1, AdditionalMaterialID: &groupID,
	}
	itemID := uuid.New()
	f.catalog.items[itemID] = models.AdditionalMaterialItem{ID: itemID, GroupID: uuid.New(), Price: dec("5")}

	_, err := f.svc.AssociateMaterials(context.Background(), adminPrincipal(), project.ID, MaterialsInput{
		MaterialIDs: []uuid.UUID{materialID},
		AdditionalItems: map[uuid.UUID][]AdditionalItemSelection{
			groupID: {{ItemID: itemID, Quantity: 1}},
		},
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}
}

func TestAssociateAssetsDiffsAttachedSet(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	assetA, assetB, assetC := uuid.New(), uuid.New(), uuid.New()
	f.repo.assets = []models.ProjectAsset{
		{ID: uuid.New(), ProjectID: project.ID, AssetID: assetA, RentPrice: dec("100"), BuyPrice: dec("1000")},
		{ID: uuid.New(), ProjectID: project.ID, AssetID: assetB, RentPrice: dec("200"), BuyPrice: dec("2000")},
	}
	// B's catalog price moved after attach; the kept row must not pick it up.
	f.catalog.assets[assetB] = models.Asset{ID: assetB, RentPrice: dec("999"), BuyPrice: dec("9999")}
	f.catalog.assets[assetC] = models.Asset{ID: assetC, RentPrice: dec("300"), BuyPrice: dec("3000")}

	got, err := f.svc.AssociateAssets(context.Background(), adminPrincipal(), project.ID, []uuid.UUID{assetB, assetC})
	if err != nil {
		t.Fatalf("associate assets: %v", err)
	}

	if len(f.repo.assets) != 2 {
		t.Fatalf("attached rows = %d, want 2", len(f.repo.assets))
	}
	for _, row := range f.repo.assets {
		switch row.AssetID {
		case assetA:
			t.Fatal("asset A should have been detached")
		case assetB:
			if !row.RentPrice.Equal(dec("200")) {
				t.Fatalf("asset B snapshot refreshed to %s", row.RentPrice)
			}
		case assetC:
			if !row.RentPrice.Equal(dec("300")) {
				t.Fatalf("asset C snapshot = %s, want current catalog 300", row.RentPrice)
			}
		}
	}
	if !got.TotalAssetRentPrice.Equal(dec("500")) {
		t.Fatalf("rent total = %s, want 500", got.TotalAssetRentPrice)
	}
	if !got.TotalAssetBuyPrice.Equal(dec("5000")) {
		t.Fatalf("buy total = %s, want 5000", got.TotalAssetBuyPrice)
	}
	if !got.TotalAssetsCost.Equal(dec("5500")) {
		t.Fatalf("assets total = %s, want 5500", got.TotalAssetsCost)
	}
}

func TestSealedProjectRejectsStagedMutations(t *testing.T) {
	project := draftProject()
	project.IsCompleted = true
	project.BuildStage = enums.BuildStageCompleted
	f := newFixture(t, project)

	_, err := f.svc.AssociateVehicles(context.Background(), adminPrincipal(), project.ID, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("err = %v, want STATE_CONFLICT", err)
	}
	if !f.activity.has(enums.ActivitySealedEditAttempt) {
		t.Fatal("expected a sealed_edit_attempt activity entry")
	}
	if !f.events.has(enums.EventPostCompletionEdit) {
		t.Fatal("expected a post_completion_edit event")
	}
}

func TestCompleteStampsTermsAndSeals(t *testing.T) {
	project := draftProject()
	project.BuildStage = enums.BuildStageAssets
	f := newFixture(t, project)
	f.repo.manpower = []models.ProjectManpower{
		{ID: uuid.New(), ProjectID: project.ID, DurationCost: dec("1000")},
	}

	got, err := f.svc.Complete(context.Background(), adminPrincipal(), project.ID, CompleteInput{
		Discount:         dec("100"),
		MarginPercentage: dec("10"),
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if !got.IsCompleted || got.BuildStage != enums.BuildStageCompleted {
		t.Fatalf("project not sealed: completed=%v stage=%s", got.IsCompleted, got.BuildStage)
	}
	if !got.Discount.Equal(dec("100")) || !got.MarginPercentage.Equal(dec("10")) {
		t.Fatalf("terms not stamped: discount=%s margin=%s", got.Discount, got.MarginPercentage)
	}
	// grand 1000, vat 150, margin 100: 1000 + 150 - 100 + 100.
	if !got.TotalCost.Equal(dec("1150")) {
		t.Fatalf("total cost = %s, want 1150", got.TotalCost)
	}
	if !f.events.has(enums.EventProjectCompleted) {
		t.Fatal("expected a project_completed event")
	}
	if !f.activity.has(enums.ActivityProjectCompleted) {
		t.Fatal("expected a project_completed activity entry")
	}

	_, err = f.svc.Complete(context.Background(), adminPrincipal(), project.ID, CompleteInput{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("second completion err = %v, want STATE_CONFLICT", err)
	}
}

func TestUnassignedMemberCannotMutate(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)

	member := Principal{UserID: uuid.New(), Role: enums.RoleMember}
	_, err := f.svc.AssociateVehicles(context.Background(), member, project.ID, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("err = %v, want ACCESS_DENIED", err)
	}

	f.repo.assignments[member.UserID] = struct{}{}
	if _, err := f.svc.AssociateVehicles(context.Background(), member, project.ID, nil); err != nil {
		t.Fatalf("assigned member rejected: %v", err)
	}
}

func TestUpsertDraftCreatesDraftAndEmits(t *testing.T) {
	f := newFixture(t, nil)

	clientID := uuid.New()
	f.catalog.client = &models.Client{ID: clientID}
	userID := uuid.New()
	f.catalog.users[userID] = models.User{ID: userID}

	got, err := f.svc.UpsertDraft(context.Background(), adminPrincipal(), UpsertDraftInput{
		Name:            "Fiber rollout",
		Category:        enums.ProjectCategoryEtimad,
		ClientID:        clientID,
		DurationDays:    30,
		AssignedUserIDs: []uuid.UUID{userID},
	})
	if err != nil {
		t.Fatalf("upsert draft: %v", err)
	}

	if got.ID == uuid.Nil || got.IsCompleted {
		t.Fatalf("unexpected draft state: %+v", got)
	}
	if !f.events.has(enums.EventProjectDraftCreated) {
		t.Fatal("expected a project_draft_created event")
	}
	if !f.events.has(enums.EventUserAssigned) {
		t.Fatal("expected a user_assigned event")
	}
	if _, ok := f.repo.assignments[userID]; !ok {
		t.Fatal("assignment not synced")
	}
}

func TestUpsertDraftWithoutIDReusesExistingDraft(t *testing.T) {
	project := draftProject()
	f := newFixture(t, project)
	f.catalog.client = &models.Client{ID: project.ClientID}

	got, err := f.svc.UpsertDraft(context.Background(), adminPrincipal(), UpsertDraftInput{
		Name:         "Substation retrofit phase 2",
		Category:     project.Category,
		ClientID:     project.ClientID,
		DurationDays: project.DurationDays,
	})
	if err != nil {
		t.Fatalf("upsert draft: %v", err)
	}

	if got.ID != project.ID {
		t.Fatalf("draft id = %s, want existing %s", got.ID, project.ID)
	}
	if got.Name != "Substation retrofit phase 2" {
		t.Fatalf("name = %q, not updated in place", got.Name)
	}
	if f.events.has(enums.EventProjectDraftCreated) {
		t.Fatal("reusing the draft must not emit project_draft_created")
	}
	if !f.events.has(enums.EventProjectUpdated) {
		t.Fatal("expected a project_updated event")
	}
}

func TestUpsertDraftAlreadyConvertedSource(t *testing.T) {
	f := newFixture(t, nil)

	clientID := uuid.New()
	f.catalog.client = &models.Client{ID: clientID}
	f.conversions.err = pkgerrors.New(pkgerrors.CodeConflict, "source already converted")

	source := enums.ConversionSourceLead
	sourceID := uuid.New()
	_, err := f.svc.UpsertDraft(context.Background(), adminPrincipal(), UpsertDraftInput{
		Name:         "Pump station upgrade",
		Category:     enums.ProjectCategoryDirect,
		ClientID:     clientID,
		DurationDays: 20,
		SourceType:   &source,
		SourceID:     &sourceID,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
	if f.conversions.calls != 1 {
		t.Fatalf("conversion calls = %d, want 1", f.conversions.calls)
	}
	if f.repo.project != nil {
		t.Fatal("no draft row may be created when the source conversion fails")
	}
}

func TestUpsertDraftRepricesVehicleProration(t *testing.T) {
	project := draftProject()
	project.TotalCarRent = dec("3000")
	project.TotalCarRentPerDuration = dec("1500")
	f := newFixture(t, project)
	f.catalog.client = &models.Client{ID: project.ClientID}

	got, err := f.svc.UpsertDraft(context.Background(), adminPrincipal(), UpsertDraftInput{
		ProjectID:    &project.ID,
		Name:         project.Name,
		Category:     project.Category,
		ClientID:     project.ClientID,
		DurationDays: 30,
	})
	if err != nil {
		t.Fatalf("upsert draft: %v", err)
	}

	if !got.TotalCarRentPerDuration.Equal(dec("3000")) {
		t.Fatalf("pro-rated rent = %s, want 3000 after doubling the duration", got.TotalCarRentPerDuration)
	}
}

func TestLockContentionSurfacesConflict(t *testing.T) {
	project := draftProject()
	repo := newMemRepo(project)
	logg := logger.New(logger.Options{ServiceName: "projects-test", Output: io.Discard})
	svc, err := NewService(repo, immediateTx{}, stubLocks{err: redislock.ErrLockHeld}, &stubCatalog{}, &stubConversions{}, &recordedActivity{}, &recordedEvents{}, logg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.AssociateVehicles(context.Background(), adminPrincipal(), project.ID, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}
