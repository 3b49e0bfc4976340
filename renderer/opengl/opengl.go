package opengl

import (
	"fmt"
	"time"

	"github.com/achilleasa/lumen/renderer"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// Coefficients for converting delta cursor movements to yaw/pitch camera angles.
	mouseSensitivityX float32 = 0.005
	mouseSensitivityY float32 = 0.005

	// Camera movement speed
	cameraMoveSpeed float32 = 0.05

	// How often the window title is refreshed with render stats.
	titleRefreshInterval = 500 * time.Millisecond

	windowTitle = "lumen"
)

// An interactive opengl-based renderer. The estimator contents are uploaded
// to a texture and blitted to the window framebuffer after every update.
//
// All methods must be called from the thread that created the renderer.
type interactiveGLRenderer struct {
	*renderer.Controller

	// opengl handles
	window    *glfw.Window
	texture   uint32
	texFbo    uint32
	frameW    int32
	frameH    int32
	lastTitle time.Time

	// state
	lastCursorPos types.Vec2
	mousePressed  bool
	showStats     bool
}

// Create a new interactive opengl renderer. glfw requires the caller to lock
// the current goroutine to the main OS thread.
func NewInteractive(sc *scene.Scene, opts renderer.Options) (renderer.Renderer, error) {
	ctrl, err := renderer.NewController(sc, opts)
	if err != nil {
		return nil, err
	}

	r := &interactiveGLRenderer{
		Controller: ctrl,
		showStats:  true,
	}

	if err = r.initGL(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.Destroy()
		r.window = nil
		glfw.Terminate()
	}
	r.Controller.Close()
}

func (r *interactiveGLRenderer) initGL() error {
	opts := r.Options()
	r.frameW, r.frameH = int32(opts.FrameW), int32(opts.FrameH)

	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	r.window, err = glfw.CreateWindow(int(r.frameW), int(r.frameH), windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for image data
	gl.GenTextures(1, &r.texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, r.frameW, r.frameH, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.texture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)

	return nil
}

// Keep refining and displaying the frame until the window is closed.
func (r *interactiveGLRenderer) Render() error {
	exposure := r.Options().Exposure
	for !r.window.ShouldClose() {
		glfw.PollEvents()

		if err := r.Update(); err != nil {
			return err
		}

		// Update texture with frame data
		frame := r.Frame().RGBA(exposure)
		gl.BindTexture(gl.TEXTURE_2D, r.texture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, r.frameW, r.frameH, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))

		// Copy texture data to framebuffer. Image rows are stored top to
		// bottom so the blit flips the Y axis.
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, 0, r.frameW, r.frameH, 0, r.frameH, r.frameW, 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		if r.showStats && time.Since(r.lastTitle) >= titleRefreshInterval {
			r.updateTitle()
		}

		r.window.SwapBuffers()
	}
	return nil
}

func (r *interactiveGLRenderer) updateTitle() {
	stats := r.Stats()
	r.window.SetTitle(fmt.Sprintf(
		"%s - epoch %d, %d-%d spp, %.0f samples/s",
		windowTitle, stats.Epoch, stats.MinSamples, stats.MaxSamples, stats.SamplesPerSecond(),
	))
	r.lastTitle = time.Now()
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	var moveDir types.Vec3
	switch key {
	case glfw.KeyEscape:
		r.window.SetShouldClose(true)
		return
	case glfw.KeyEnter:
		r.Reset()
		return
	case glfw.KeyTab:
		r.showStats = !r.showStats
		if !r.showStats {
			r.window.SetTitle(windowTitle)
		}
		return
	case glfw.KeyUp, glfw.KeyW:
		moveDir = types.XYZ(0, 0, 1)
	case glfw.KeyDown, glfw.KeyS:
		moveDir = types.XYZ(0, 0, -1)
	case glfw.KeyLeft, glfw.KeyA:
		moveDir = types.XYZ(-1, 0, 0)
	case glfw.KeyRight, glfw.KeyD:
		moveDir = types.XYZ(1, 0, 0)
	default:
		return
	}

	// Double speed if shift is pressed
	var speedScaler float32 = 1.0
	if (mods & glfw.ModShift) == glfw.ModShift {
		speedScaler = 2.0
	}
	r.Move(moveDir.Mul(speedScaler * cameraMoveSpeed))
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)
		r.mousePressed = true
	} else {
		r.mousePressed = false
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed {
		return
	}

	// Calculate delta movement and apply mouse sensitivity
	newPos := types.XY(float32(xPos), float32(yPos))
	delta := r.lastCursorPos.Sub(newPos)
	r.lastCursorPos = newPos

	// Dragging rotates the camera around its location
	r.Rotate(delta[0]*mouseSensitivityX, delta[1]*mouseSensitivityY, 0)
}
