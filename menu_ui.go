package main

import (
	"fmt"
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/parkkeeper/menu"
)

// menuScreen is the ebitenui front end driven by the menu machine. Button
// handlers only record the click; the machine consumes it on its next tick.
type menuScreen struct {
	game *Game

	manual *ebitenui.UI
	end    *ebitenui.UI
	score  *widget.Text

	clicked  menu.Button
	showEnd  bool
	focus    string
	doubleOn bool
	quit     bool
}

func newMenuScreen(g *Game) *menuScreen {
	s := &menuScreen{game: g, focus: "manual"}

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	s.manual = s.panel(
		widget.NewText(
			widget.TextOpts.Text("Park Keeper\n\nSteer the goose with WASD or the arrows.\nSteal the apple and bring it to the island.\nDon't let the keeper catch you.", &face, white),
			widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
		),
		s.button("Single player", &face, color.NRGBA{R: 0xa0, G: 0x20, B: 0x20, A: 0xff}, menu.ButtonSingle),
		s.button("Two players", &face, color.NRGBA{R: 0x20, G: 0x20, B: 0xa0, A: 0xff}, menu.ButtonDouble),
	)

	s.score = widget.NewText(
		widget.TextOpts.Text("", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)
	s.end = s.panel(
		s.score,
		s.button("Replay", &face, color.NRGBA{R: 0xa0, G: 0x20, B: 0x20, A: 0xff}, menu.ButtonReplay),
		s.button("Exit", &face, color.NRGBA{R: 0x20, G: 0x20, B: 0xa0, A: 0xff}, menu.ButtonExit),
	)
	return s
}

func (s *menuScreen) button(label string, face *ebtext.Face, c color.NRGBA, b menu.Button) *widget.Button {
	img := imageui.NewNineSliceColor(c)
	return widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: img, Pressed: img}),
		widget.ButtonOpts.Text(label, face, &widget.ButtonTextColor{Idle: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}),
		widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			s.clicked = b
		}),
	)
}

func (s *menuScreen) panel(children ...widget.PreferredSizeLocateableWidget) *ebitenui.UI {
	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(color.NRGBA{A: 200})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(baseWidth/3, baseHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	for _, child := range children {
		panel.AddChild(child)
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	return &ebitenui.UI{Container: root}
}

// active returns the widget tree to update and draw this frame, if any.
func (s *menuScreen) active() *ebitenui.UI {
	if s.showEnd {
		return s.end
	}
	if s.focus == "manual" {
		return s.manual
	}
	return nil
}

func (s *menuScreen) reset() {
	s.clicked = menu.ButtonNone
	s.showEnd = false
	s.doubleOn = false
	s.focus = "manual"
}

func (s *menuScreen) Clicked() menu.Button {
	b := s.clicked
	s.clicked = menu.ButtonNone
	return b
}

func (s *menuScreen) EscapePressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

func (s *menuScreen) FocusManual()    { s.focus = "manual" }
func (s *menuScreen) FocusGoose()     { s.focus = "goose" }
func (s *menuScreen) HideEndButtons() { s.showEnd = false }
func (s *menuScreen) Quit()           { s.quit = true }

func (s *menuScreen) ShowEndButtons(score int) {
	s.showEnd = true
	s.score.Label = fmt.Sprintf("Time's up! score is %d", score)
}

func (s *menuScreen) StartDoublePlayer() {
	s.doubleOn = true
	s.game.world.ResetRound()
}
