// Package license derives permitted modalities from evidential grounding.
//
// A license regulates normative speech acts only. Assertive and
// conditional forms are subject to licensing, descriptive observation
// needs no license, and refusal is always permitted. The deriver is the
// sole authority on grounding sufficiency; axiom checking enforces the
// resulting license and never re-derives it.
package license

import (
	"github.com/ppiankov/normgate/internal/logging"
	"github.com/ppiankov/normgate/internal/model"
	"go.uber.org/zap"
)

// Deriver maps a ground set onto a license.
//
// Strength rule:
//   - empty ground set: refusal only
//   - no factual grounding: refusal only
//   - strong factual grounding: assertive, conditional, refusal
//   - weak factual grounding: conditional, refusal
//
// Strength is read, never elevated. A weak ground stays weak no matter
// how many weak grounds accumulate.
type Deriver struct{}

// NewDeriver returns a license deriver.
func NewDeriver() *Deriver {
	return &Deriver{}
}

// Derive computes the license from all candidate grounds (conservative
// mode: every ground is treated as potentially used).
func (d *Deriver) Derive(groundSet model.GroundSet) model.License {
	if groundSet.IsEmpty() {
		logging.L().Debug("license: refusal only (empty ground set)")
		return model.NewLicense(model.ModalityRefusal)
	}

	strength, present := groundSet.ScopeStrength(model.ScopeFactual)
	if !present {
		logging.L().Debug("license: refusal only (no factual grounding)")
		return model.NewLicense(model.ModalityRefusal)
	}
	return licenseForFactualStrength(strength)
}

// DeriveWithLinks computes the license from declared usage only. Grounds
// count when a supports-role link resolves to them; disambiguates and
// contextualizes links never license anything. Unresolved link targets
// are logged and skipped, so an id mismatch fails closed toward refusal.
func (d *Deriver) DeriveWithLinks(groundSet model.GroundSet, links model.LinkSet) model.License {
	var supportLinks []model.StatementGroundLink
	for _, link := range links.Links {
		if link.Role == model.RoleSupports {
			supportLinks = append(supportLinks, link)
		}
	}
	if len(supportLinks) == 0 {
		logging.L().Debug("license: refusal only (no supports links)")
		return model.NewLicense(model.ModalityRefusal)
	}

	var used []model.KnowledgeNode
	var unresolved []string
	for _, link := range supportLinks {
		node, ok := groundSet.Resolve(link.GroundID)
		if !ok {
			unresolved = append(unresolved, link.GroundID)
			continue
		}
		used = append(used, node)
	}
	if len(unresolved) > 0 {
		logging.L().Warn("unresolved supports-link grounds",
			zap.Int("count", len(unresolved)),
			zap.Strings("ground_ids", unresolved))
	}
	if len(used) == 0 {
		logging.L().Warn("license: refusal only (all supports links unresolved)")
		return model.NewLicense(model.ModalityRefusal)
	}

	strength := model.Strength("")
	factualPresent := false
	for _, node := range used {
		if node.Scope != model.ScopeFactual {
			continue
		}
		factualPresent = true
		if node.Strength == model.StrengthStrong {
			strength = model.StrengthStrong
			break
		}
		strength = model.StrengthWeak
	}
	if !factualPresent {
		logging.L().Debug("license: refusal only (no factual supports grounds)")
		return model.NewLicense(model.ModalityRefusal)
	}
	return licenseForFactualStrength(strength)
}

func licenseForFactualStrength(strength model.Strength) model.License {
	if strength == model.StrengthStrong {
		logging.L().Debug("license: assertive, conditional, refusal (strong factual)")
		return model.NewLicense(model.ModalityAssertive, model.ModalityConditional, model.ModalityRefusal)
	}
	logging.L().Debug("license: conditional, refusal (weak factual)")
	return model.NewLicense(model.ModalityConditional, model.ModalityRefusal)
}
