package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountSeedsThemeFromAmbientPreference(t *testing.T) {
	h := newHarness(t, true).mount()

	assert.Equal(t, Dark, h.ctrl.Snapshot().Theme)
	assert.Equal(t, "dark", h.store.values[PreferenceKey])
	assert.Equal(t, []Theme{Dark}, h.viewport.themes)
}

func TestMountPrefersStoredTheme(t *testing.T) {
	h := newHarness(t, true)
	h.store.values = map[string]string{PreferenceKey: "light"}
	h.mount()

	assert.Equal(t, Light, h.ctrl.Snapshot().Theme)
	assert.Equal(t, []Theme{Light}, h.viewport.themes)
}

func TestMountIgnoresGarbageStoredTheme(t *testing.T) {
	h := newHarness(t, false)
	h.store.values = map[string]string{PreferenceKey: "sepia"}
	h.mount()

	assert.Equal(t, Light, h.ctrl.Snapshot().Theme)
	assert.Equal(t, "light", h.store.values[PreferenceKey])
}

func TestToggleThemeKeepsStoreAndDocumentInSync(t *testing.T) {
	h := newHarness(t, false).mount()

	h.ctrl.ToggleTheme()
	assert.Equal(t, Dark, h.ctrl.Snapshot().Theme)
	assert.Equal(t, "dark", h.store.values[PreferenceKey])
	assert.Equal(t, Dark, h.viewport.themes[len(h.viewport.themes)-1])

	h.ctrl.ToggleTheme()
	assert.Equal(t, Light, h.ctrl.Snapshot().Theme)
	assert.Equal(t, "light", h.store.values[PreferenceKey])
	assert.Equal(t, Light, h.viewport.themes[len(h.viewport.themes)-1])
}

func TestThemeStillAppliesWhenStoreFails(t *testing.T) {
	h := newHarness(t, false).mount()
	h.store.failOn = true

	h.ctrl.SetTheme(Dark)
	assert.Equal(t, Dark, h.ctrl.Snapshot().Theme)
	assert.Equal(t, Dark, h.viewport.themes[len(h.viewport.themes)-1])
}

func TestMountIsIdempotent(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.Mount()
	assert.Equal(t, 1, h.store.writes)
}

func TestScrollThreshold(t *testing.T) {
	h := newHarness(t, false).mount()

	h.scroll.emit(11)
	assert.True(t, h.ctrl.Snapshot().Scrolled)

	h.scroll.emit(0)
	assert.False(t, h.ctrl.Snapshot().Scrolled)

	h.scroll.emit(10)
	assert.False(t, h.ctrl.Snapshot().Scrolled)

	h.scroll.emit(10.5)
	assert.True(t, h.ctrl.Snapshot().Scrolled)
}

func TestTeardownDetachesListeners(t *testing.T) {
	h := newHarness(t, false).mount()
	require.NotNil(t, h.scroll.fn)
	require.NotNil(t, h.observer.fn)

	h.ctrl.Teardown()
	assert.True(t, h.scroll.detached)
	assert.True(t, h.observer.disconnected)
	assert.False(t, h.ctrl.Mounted())
}

func TestObserverRegistersEverySkill(t *testing.T) {
	h := newHarness(t, false).mount()
	assert.Equal(t, h.site.SkillTargets(), h.observer.targets)
	assert.Equal(t, RevealThreshold, h.observer.threshold)
}

func TestRevealIsOneWay(t *testing.T) {
	h := newHarness(t, false).mount()

	h.observer.emit(VisibilityEntry{Target: "skill-2", Ratio: 0.3, Intersecting: true})
	assert.False(t, h.ctrl.Snapshot().IsRevealed("skill-2"))

	h.observer.emit(VisibilityEntry{Target: "skill-2", Ratio: 0.5, Intersecting: true})
	assert.True(t, h.ctrl.Snapshot().IsRevealed("skill-2"))

	h.observer.emit(VisibilityEntry{Target: "skill-2", Ratio: 0, Intersecting: false})
	assert.True(t, h.ctrl.Snapshot().IsRevealed("skill-2"))

	assert.False(t, h.ctrl.Snapshot().IsRevealed("skill-3"))
}

func TestRevealIgnoresUnknownTargets(t *testing.T) {
	h := newHarness(t, false).mount()
	h.observer.emit(VisibilityEntry{Target: "hero", Ratio: 1, Intersecting: true})
	assert.Empty(t, h.ctrl.Snapshot().Revealed)
}

func TestMenuStateMachine(t *testing.T) {
	h := newHarness(t, false).mount()
	assert.False(t, h.ctrl.Snapshot().MenuOpen)

	h.ctrl.ToggleMenu()
	assert.True(t, h.ctrl.Snapshot().MenuOpen)
	h.ctrl.ToggleMenu()
	assert.False(t, h.ctrl.Snapshot().MenuOpen)

	h.ctrl.ToggleMenu()
	assert.True(t, h.ctrl.Navigate("#about"))
	assert.False(t, h.ctrl.Snapshot().MenuOpen)

	h.ctrl.ToggleMenu()
	h.ctrl.HireMe()
	assert.False(t, h.ctrl.Snapshot().MenuOpen)
}

func TestNavigateScrollsToAnchor(t *testing.T) {
	h := newHarness(t, false).mount()

	assert.True(t, h.ctrl.Navigate("#skills"))
	assert.Equal(t, []string{"skills"}, h.viewport.scrolled)
}

func TestNavigateMissingTargetIsNoop(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.ToggleMenu()

	assert.True(t, h.ctrl.Navigate("#nowhere"))
	assert.True(t, h.ctrl.Navigate("#"))
	assert.Empty(t, h.viewport.scrolled)
	assert.True(t, h.ctrl.Snapshot().MenuOpen)
}

func TestNavigateLeavesExternalLinksAlone(t *testing.T) {
	h := newHarness(t, false).mount()
	assert.False(t, h.ctrl.Navigate("https://github.com/"))
	assert.Empty(t, h.viewport.scrolled)
}

func TestHireMeScrollsToContact(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.HireMe()
	assert.Equal(t, []string{ContactSection}, h.viewport.scrolled)
}

func TestBrandScrollsTopThenReloads(t *testing.T) {
	h := newHarness(t, false).mount()

	h.ctrl.Brand()
	assert.Equal(t, 1, h.viewport.tops)
	assert.Equal(t, 0, h.viewport.reloads)

	h.sched.Advance(ReloadDelay - 1)
	assert.Equal(t, 0, h.viewport.reloads)

	h.sched.Advance(1)
	assert.Equal(t, 1, h.viewport.reloads)
}

func TestBrandReloadSkippedAfterTeardown(t *testing.T) {
	h := newHarness(t, false).mount()

	h.ctrl.Brand()
	h.ctrl.Teardown()
	h.sched.fireAll()
	assert.Equal(t, 0, h.viewport.reloads)
}

func TestSelectAndCloseProject(t *testing.T) {
	h := newHarness(t, false).mount()

	require.True(t, h.ctrl.SelectProject(2))
	snap := h.ctrl.Snapshot()
	require.NotNil(t, snap.Selected)
	p, _ := h.site.Project(2)
	assert.Equal(t, p.Title, snap.Selected.Title)
	assert.Equal(t, p.Description, snap.Selected.Description)

	require.True(t, h.ctrl.SelectProject(3))
	assert.Equal(t, 3, h.ctrl.Snapshot().Selected.ID)

	h.ctrl.CloseProject()
	assert.Nil(t, h.ctrl.Snapshot().Selected)
}

func TestSelectUnknownProject(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.SelectProject(1)

	assert.False(t, h.ctrl.SelectProject(99))
	assert.Equal(t, 1, h.ctrl.Snapshot().Selected.ID)
}

func TestSnapshotIsACopy(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.SelectProject(1)
	h.ctrl.Submit()

	snap := h.ctrl.Snapshot()
	snap.Errors[FieldName] = "tampered"
	snap.Selected.Tags[0] = "tampered"
	snap.Revealed["skill-0"] = true

	again := h.ctrl.Snapshot()
	assert.Equal(t, "Name is required", again.Errors[FieldName])
	assert.NotEqual(t, "tampered", again.Selected.Tags[0])
	assert.False(t, again.IsRevealed("skill-0"))
}

func TestSubmitEmptyForm(t *testing.T) {
	h := newHarness(t, false).mount()

	assert.False(t, h.ctrl.Submit())
	snap := h.ctrl.Snapshot()
	assert.Len(t, snap.Errors, 3)
	assert.False(t, snap.Submitted)
	assert.Empty(t, h.sched.tasks)
}

func TestSubmitKeepsFieldsOnError(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.Input(FieldName, "Ada")
	h.ctrl.Input(FieldEmail, "ada@")

	assert.False(t, h.ctrl.Submit())
	snap := h.ctrl.Snapshot()
	assert.Equal(t, "Ada", snap.Form.Name)
	assert.Equal(t, "ada@", snap.Form.Email)
	assert.Equal(t, Errors{FieldEmail: "Valid email is required", FieldMessage: "Message is required"}, snap.Errors)
}

func TestInputClearsOnlyThatFieldsError(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.Submit()

	h.ctrl.Input(FieldEmail, "x")
	snap := h.ctrl.Snapshot()
	assert.NotContains(t, snap.Errors, FieldEmail)
	assert.Equal(t, "Name is required", snap.Errors[FieldName])
	assert.Equal(t, "Message is required", snap.Errors[FieldMessage])
}

func TestSuccessfulSubmitResetsAndReverts(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.Input(FieldName, "A")
	h.ctrl.Input(FieldEmail, "a@b.c")
	h.ctrl.Input(FieldMessage, "hi")

	require.True(t, h.ctrl.Submit())
	snap := h.ctrl.Snapshot()
	assert.Equal(t, Form{}, snap.Form)
	assert.Empty(t, snap.Errors)
	assert.True(t, snap.Submitted)

	h.sched.Advance(SubmittedTimeout - 1)
	assert.True(t, h.ctrl.Snapshot().Submitted)

	h.sched.Advance(1)
	assert.False(t, h.ctrl.Snapshot().Submitted)
}

func TestSubmittedRevertSkippedAfterTeardown(t *testing.T) {
	h := newHarness(t, false).mount()
	h.ctrl.Input(FieldName, "A")
	h.ctrl.Input(FieldEmail, "a@b.c")
	h.ctrl.Input(FieldMessage, "hi")
	require.True(t, h.ctrl.Submit())

	h.ctrl.Teardown()
	h.sched.fireAll()
	assert.True(t, h.ctrl.Snapshot().Submitted)
}
