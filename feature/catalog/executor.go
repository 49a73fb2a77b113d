package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-sync/core/config"
	"catalog-sync/core/erp"
	"catalog-sync/core/retry"
	"catalog-sync/core/shopify"
	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
)

// state names the executor's position in the per-group state machine. The
// states exist for log correlation; transitions are linear within one
// Reconcile call.
type state string

const (
	stateResolved         state = "resolved"
	stateCreating         state = "creating"
	stateAttaching        state = "attaching"
	stateAwaitingChildren state = "awaiting_children"
	stateReconciled       state = "reconciled"
	stateFailed           state = "failed"
)

// errCreateNewParent signals that attaching to the found parent is
// structurally impossible (the needed axis does not exist or cannot be
// correlated). The group falls back to the create path, unless it is
// flagged "existing", in which case the failure is terminal.
var errCreateNewParent = errors.New("attachment requires a new parent")

// Executor reconciles one group at a time against one store: it creates a
// new parent with its children, attaches missing children to an existing
// parent, or applies field-level updates. Every remote call goes through
// the retry controller; business rejections are classified centrally.
type Executor struct {
	store    config.Store
	target   TargetClient
	mappings *MappingStore
	resolver *Resolver
	retryCfg retry.Config
	log      *zap.Logger
}

// NewExecutor creates an executor for one store.
func NewExecutor(store config.Store, target TargetClient, mappings *MappingStore, resolver *Resolver, retryCfg retry.Config, log *zap.Logger) *Executor {
	return &Executor{
		store:    store,
		target:   target,
		mappings: mappings,
		resolver: resolver,
		retryCfg: retryCfg,
		log:      log.With(zap.String("store", store.ID)),
	}
}

// Reconcile drives one group to its terminal state. The returned result can
// be non-nil even on failure: children created before a partial failure
// keep their identifiers and mappings, so the next run's wholesale retry of
// the group stays idempotent.
func (e *Executor) Reconcile(ctx context.Context, group *models.Group) (*models.GroupResult, error) {
	if len(group.Items) == 0 {
		// Nothing left to reconcile for this key; treated as a no-op
		// success rather than creating a childless parent.
		return models.NewGroupResult(""), nil
	}

	res, err := e.resolver.Resolve(ctx, group)
	if err != nil {
		e.transition(group, stateFailed)
		return nil, err
	}
	e.transition(group, stateResolved)

	var result *models.GroupResult
	if res.Found {
		result, err = e.attach(ctx, group, res)
		if errors.Is(err, errCreateNewParent) {
			if group.StatusExisting() {
				e.transition(group, stateFailed)
				return nil, fmt.Errorf("group %s flagged %q: %w", group.Key(), erp.StatusExisting, err)
			}
			e.log.Info("Existing parent cannot take the group, creating a new one",
				zap.String("group", group.Key()),
				zap.String("parent_id", res.ParentID),
				zap.Error(err))
			result, err = e.create(ctx, group)
		}
	} else {
		result, err = e.create(ctx, group)
	}

	// Bookkeeping runs even on partial failure: the remote side effects
	// happened and their mappings must survive.
	if result != nil {
		e.mappings.RecordGroup(group, result)
	}

	if err != nil {
		e.transition(group, stateFailed)
		return result, err
	}
	e.transition(group, stateReconciled)
	return result, nil
}

// create builds a new parent with its declared option axis, then creates
// every child in one bulk call stamped with the axis ID the target assigned.
// The parent result must be available before any child call is issued; the
// target assigns axis IDs only at parent-creation time.
func (e *Executor) create(ctx context.Context, group *models.Group) (*models.GroupResult, error) {
	e.transition(group, stateCreating)
	rep := group.Representative()

	input := shopify.ProductInput{
		Title:           rep.Title,
		Handle:          DeriveHandle(rep.Title),
		DescriptionHTML: rep.Description,
		Status:          shopify.StatusActive,
	}
	if group.HasOptions() {
		input.Options = []shopify.OptionInput{{Name: OptionName, Values: group.OptionValues()}}
	}

	var p *shopify.Product
	err := retry.Do(ctx, e.log, "productCreate", e.retryCfg, func() error {
		var err error
		p, err = e.target.CreateProduct(ctx, input)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create parent for group %s: %w", group.Key(), err)
	}

	result := models.NewGroupResult(p.ID)
	result.CreatedParent = true

	axisID := findOption(p.Options, OptionName)
	if group.HasOptions() && axisID == "" {
		return result, fmt.Errorf("group %s: axis %q missing on created product %s", group.Key(), OptionName, p.ID)
	}

	e.transition(group, stateAwaitingChildren)
	if err := e.createChildren(ctx, group, result, axisID); err != nil {
		return result, err
	}
	return result, nil
}

// createChildren submits one bulk call for all of the group's children and
// correlates the created variants back to source items by SKU. A
// linked-option rejection triggers exactly one resubmission with metaobject
// references in place of plain labels.
func (e *Executor) createChildren(ctx context.Context, group *models.Group, result *models.GroupResult, axisID string) error {
	inputs := make([]shopify.VariantInput, 0, len(group.Items))
	for _, item := range group.Items {
		inputs = append(inputs, e.variantInput(item, axisID, ""))
	}

	vr, err := e.bulkCreate(ctx, result.ParentID, inputs)
	if err != nil {
		return fmt.Errorf("create children for group %s: %w", group.Key(), err)
	}

	if axisID != "" && hasLinkedOptionRejection(vr.Errors) {
		e.log.Info("Axis is reference-backed, resubmitting children with metaobject references",
			zap.String("group", group.Key()))
		refInputs, err := e.referenceInputs(ctx, group.Items, axisID)
		if err != nil {
			return fmt.Errorf("group %s: %w", group.Key(), err)
		}
		vr, err = e.bulkCreate(ctx, result.ParentID, refInputs)
		if err != nil {
			return fmt.Errorf("create children for group %s: %w", group.Key(), err)
		}
	}

	for _, v := range vr.Created {
		result.Created[v.SKU] = v
	}

	if len(vr.Errors) > 0 {
		messages := make([]string, 0, len(vr.Errors))
		for _, ue := range vr.Errors {
			messages = append(messages, ue.Message)
		}
		return fmt.Errorf("group %s: %d of %d children rejected: %s",
			group.Key(), len(vr.Errors), len(group.Items), strings.Join(messages, "; "))
	}
	return nil
}

// attach creates the group's not-yet-known children under an existing
// parent, one request per item so each rejection can be classified and
// handled individually.
func (e *Executor) attach(ctx context.Context, group *models.Group, res *Resolution) (*models.GroupResult, error) {
	e.transition(group, stateAttaching)

	axisID := findOption(res.Options, OptionName)
	if group.HasOptions() && axisID == "" {
		return nil, fmt.Errorf("group %s: axis %q not present on product %s: %w",
			group.Key(), OptionName, res.ParentID, errCreateNewParent)
	}

	result := models.NewGroupResult(res.ParentID)
	known := make(map[string]shopify.Variant, len(res.KnownChildren))
	for _, v := range res.KnownChildren {
		known[v.SKU] = v
	}
	childrenFetched := res.ChildrenFetched

	var failures []string
	for i := range group.Items {
		item := group.Items[i]

		if v, ok := known[item.Code]; ok {
			result.Known[item.Code] = v
			continue
		}
		if item.VariantID != "" {
			// Child-level forward pointer: trust it, no call.
			result.Known[item.Code] = shopify.Variant{ID: item.VariantID, SKU: item.Code}
			continue
		}

		v, created, err := e.attachOne(ctx, res.ParentID, item, axisID, known, &childrenFetched)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", item.Code, err))
			continue
		}
		if created {
			result.Created[item.Code] = v
		} else {
			result.Known[item.Code] = v
		}
	}

	if len(failures) > 0 {
		return result, fmt.Errorf("group %s: %s", group.Key(), strings.Join(failures, "; "))
	}
	return result, nil
}

// attachOne creates a single child under an existing parent. Plain-label
// creation is attempted first; a linked-option rejection is retried exactly
// once with the metaobject reference, and a duplicate rejection resolves to
// the pre-existing child.
func (e *Executor) attachOne(ctx context.Context, parentID string, item erp.Item, axisID string, known map[string]shopify.Variant, childrenFetched *bool) (shopify.Variant, bool, error) {
	vr, err := e.bulkCreate(ctx, parentID, []shopify.VariantInput{e.variantInput(item, axisID, "")})
	if err != nil {
		return shopify.Variant{}, false, err
	}
	if len(vr.Errors) == 0 && len(vr.Created) == 1 {
		return vr.Created[0], true, nil
	}

	msg := firstRejection(vr.Errors)
	switch ClassifyRejection(msg) {
	case RejectLinkedOption:
		ref, ok, err := e.resolver.EnsureOptionValue(ctx, item.Color)
		if err != nil {
			return shopify.Variant{}, false, err
		}
		if !ok {
			return shopify.Variant{}, false, fmt.Errorf("option value %q has no reference object on target", item.Color)
		}

		vr, err = e.bulkCreate(ctx, parentID, []shopify.VariantInput{e.variantInput(item, axisID, ref)})
		if err != nil {
			return shopify.Variant{}, false, err
		}
		if len(vr.Errors) == 0 && len(vr.Created) == 1 {
			return vr.Created[0], true, nil
		}

		msg = firstRejection(vr.Errors)
		if ClassifyRejection(msg) == RejectDuplicate {
			return e.locateExisting(ctx, parentID, item, known, childrenFetched, msg)
		}
		return shopify.Variant{}, false, errors.New(msg)

	case RejectDuplicate:
		return e.locateExisting(ctx, parentID, item, known, childrenFetched, msg)

	default:
		return shopify.Variant{}, false, errors.New(msg)
	}
}

// locateExisting turns a duplicate rejection into an idempotent success by
// finding the pre-existing child. On the pointer path the children were not
// fetched up front, so one on-demand fetch fills the known set. A duplicate
// whose child still cannot be located degrades to a terminal validation
// failure.
func (e *Executor) locateExisting(ctx context.Context, parentID string, item erp.Item, known map[string]shopify.Variant, childrenFetched *bool, msg string) (shopify.Variant, bool, error) {
	if v, ok := known[item.Code]; ok {
		return v, false, nil
	}

	if !*childrenFetched {
		children, err := e.resolver.FetchChildren(ctx, parentID)
		if err != nil {
			return shopify.Variant{}, false, err
		}
		*childrenFetched = true
		for _, v := range children {
			known[v.SKU] = v
		}
		if v, ok := known[item.Code]; ok {
			return v, false, nil
		}
	}

	return shopify.Variant{}, false, fmt.Errorf("target reports duplicate but existing child not found: %s", msg)
}

// UpdatePrice applies a field-level price update for one item. Existence is
// never re-resolved when an explicit ID is already known; items without a
// variant pointer or mapping must go through the products sync first.
func (e *Executor) UpdatePrice(ctx context.Context, item erp.Item) error {
	variantID := item.VariantID
	if variantID == "" {
		id, ok, err := e.mappings.Lookup(item.Code, e.store.ID, models.TargetChild)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("item %s has no variant mapping; run the products sync first", item.Code)
		}
		variantID = id
	}

	productID := item.ProductID
	if productID == "" {
		key := item.ParentKey
		if key == "" {
			key = item.Code
		}
		id, ok, err := e.mappings.Lookup(key, e.store.ID, models.TargetParent)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("item %s has no parent mapping; run the products sync first", item.Code)
		}
		productID = id
	}

	price, compareAt := Normalize(item, e.store, e.log)
	return retry.Do(ctx, e.log, "variantsBulkUpdate", e.retryCfg, func() error {
		return e.target.UpdateVariant(ctx, productID, shopify.VariantUpdate{
			VariantID:      variantID,
			Price:          price,
			CompareAtPrice: compareAt,
		})
	})
}

func (e *Executor) bulkCreate(ctx context.Context, productID string, inputs []shopify.VariantInput) (*shopify.VariantsResult, error) {
	var vr *shopify.VariantsResult
	err := retry.Do(ctx, e.log, "variantsBulkCreate", e.retryCfg, func() error {
		var err error
		vr, err = e.target.CreateVariantsBulk(ctx, productID, inputs)
		return err
	})
	return vr, err
}

func (e *Executor) variantInput(item erp.Item, axisID, referenceID string) shopify.VariantInput {
	price, compareAt := Normalize(item, e.store, e.log)

	in := shopify.VariantInput{
		SKU:            item.Code,
		Barcode:        item.Barcode,
		Price:          price,
		CompareAtPrice: compareAt,
	}
	if axisID != "" && item.Color != "" {
		ov := shopify.OptionValueInput{OptionID: axisID}
		if referenceID != "" {
			ov.LinkedMetafieldValue = referenceID
		} else {
			ov.Name = item.Color
		}
		in.OptionValues = []shopify.OptionValueInput{ov}
	}
	return in
}

// referenceInputs rebuilds the group's child inputs with metaobject
// references for every option value. A value without a reference object on
// the target fails the group; references are never invented.
func (e *Executor) referenceInputs(ctx context.Context, items []erp.Item, axisID string) ([]shopify.VariantInput, error) {
	inputs := make([]shopify.VariantInput, 0, len(items))
	for _, item := range items {
		ref := ""
		if item.Color != "" {
			id, ok, err := e.resolver.EnsureOptionValue(ctx, item.Color)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("option value %q has no reference object on target", item.Color)
			}
			ref = id
		}
		inputs = append(inputs, e.variantInput(item, axisID, ref))
	}
	return inputs, nil
}

func (e *Executor) transition(group *models.Group, st state) {
	e.log.Debug("Group state",
		zap.String("group", group.Key()),
		zap.String("state", string(st)))
}

func findOption(options []shopify.Option, name string) string {
	for _, o := range options {
		if strings.EqualFold(o.Name, name) {
			return o.ID
		}
	}
	return ""
}

func firstRejection(errs []shopify.UserError) string {
	if len(errs) == 0 {
		return "variant creation returned neither a variant nor an error"
	}
	return errs[0].Message
}

func hasLinkedOptionRejection(errs []shopify.UserError) bool {
	for _, ue := range errs {
		if ClassifyRejection(ue.Message) == RejectLinkedOption {
			return true
		}
	}
	return false
}
