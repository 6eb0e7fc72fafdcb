package main

import (
	"fmt"
	"image/color"

	"github.com/milk9111/spatialaudio/common"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// NewMixerUI builds the centered mixer panel shown with Esc. Buttons use
// colored nine-slices and the built-in basic font, so no theme assets are
// needed.
func NewMixerUI(g *Game) *ebitenui.UI {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x4a, G: 0x4a, B: 0x4a, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	btnTextColor := &widget.ButtonTextColor{Idle: colornames.White}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	title := widget.NewText(
		widget.TextOpts.Text("Mixer", &face, colornames.White),
		widget.TextOpts.WidgetOpts(center),
	)
	volumeLabel := widget.NewText(
		widget.TextOpts.Text(volumeText(g.volume), &face, colornames.Lightgrey),
		widget.TextOpts.WidgetOpts(center),
	)

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnImg}),
			widget.ButtonOpts.Text(label, &face, btnTextColor),
			widget.ButtonOpts.TextPadding(&widget.Insets{Left: 12, Right: 12, Top: 4, Bottom: 4}),
			widget.ButtonOpts.WidgetOpts(center),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				onClick()
				volumeLabel.Label = volumeText(g.volume)
			}),
		)
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(common.BaseWidth/3, common.BaseHeight/2),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(volumeLabel)
	panel.AddChild(button("Volume +", func() { g.changeVolume(volumeStep) }))
	panel.AddChild(button("Volume -", func() { g.changeVolume(-volumeStep) }))
	panel.AddChild(button("Pause all", func() { g.pauseAll(true) }))
	panel.AddChild(button("Resume all", func() { g.pauseAll(false) }))
	panel.AddChild(button("Next song", g.nextTrack))
	panel.AddChild(button("Stop song", g.stopMusic))
	panel.AddChild(button("Close", func() { g.showMixer = false }))

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}

func volumeText(v float64) string {
	return fmt.Sprintf("Global volume %.1f (new sounds)", v)
}
