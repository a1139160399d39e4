package server

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// Response messages for /generate.
const (
	msgHTMLRequired = "HTML content is required"
	msgHTMLInvalid  = "Invalid HTML content (too large or malformed)"
	msgInvalidJSON  = "Request body must be a JSON object"
)

var availableEndpoints = []string{"GET /", "GET /health", "POST /generate"}

// generateRequest is the POST /generate body.
type generateRequest struct {
	HTML             string `json:"html"`
	Filename         string `json:"filename"`
	PDFFooterDisplay string `json:"pdfFooterDisplay"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "PDF Generation Microservice",
		"version":     s.version,
		"description": "Renders HTML documents to A4 PDF with headless Chrome",
		"endpoints": gin.H{
			"health": gin.H{
				"method":         http.MethodGet,
				"path":           "/health",
				"description":    "Health check endpoint",
				"authentication": false,
			},
			"generate": gin.H{
				"method":         http.MethodPost,
				"path":           "/generate",
				"description":    "Generate PDF from HTML",
				"authentication": s.verifier != nil,
				"headers": gin.H{
					"Authorization": "Bearer <token>",
					"Content-Type":  "application/json",
				},
				"body": gin.H{
					"html":             "HTML content (required)",
					"filename":         "Filename for PDF (optional, default: " + html2pdf.DefaultFilename + ")",
					"pdfFooterDisplay": `Footer display mode: "all" or "firstPage" (optional, default: "all")`,
				},
			},
		},
		"examples": gin.H{
			"curl": `curl -X POST http://localhost:` + strconv.Itoa(s.cfg.Server.Port) +
				`/generate -H "Authorization: Bearer $TOKEN" -H "Content-Type: application/json"` +
				` -d '{"html":"<h1>Hello World</h1>"}' --output document.pdf`,
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	now := s.now()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   ServiceName,
		"version":   s.version,
		"timestamp": now.UTC().Format(time.RFC3339Nano),
		"uptime":    now.Sub(s.started).Seconds(),
		"engine":    s.renderer.EngineState().String(),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	log := logger.FromGin(c)

	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		if isBodyTooLarge(err) {
			abortTooLarge(c)
			return
		}
		badRequest(c, msgInvalidJSON)
		return
	}

	if body.HTML == "" {
		badRequest(c, msgHTMLRequired)
		return
	}
	if !html2pdf.ValidHTML(body.HTML, s.cfg.Limits.MaxHTMLBytes) {
		badRequest(c, msgHTMLInvalid)
		return
	}
	footer, err := html2pdf.ParseFooterDisplay(body.PDFFooterDisplay)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	req := html2pdf.Request{
		HTML:          body.HTML,
		Filename:      sanitizeFilename(body.Filename),
		FooterDisplay: footer,
	}
	fields := []zap.Field{
		zap.String("filename", req.Filename),
		zap.Stringer("footer_display", footer),
		zap.Int("html_bytes", len(body.HTML)),
	}
	if claims, ok := ClaimsFrom(c); ok {
		fields = append(fields, zap.String("subject", claims.Subject))
	}
	log.Info("generating PDF", fields...)

	start := time.Now()
	res, err := s.renderer.Render(c.Request.Context(), req)
	elapsed := time.Since(start)
	if err != nil {
		_ = c.Error(err)
		kind := html2pdf.KindOf(err)
		log.Error("PDF generation failed", zap.Error(err), zap.String("kind", string(kind)))
		if kind == html2pdf.KindValidation {
			badRequest(c, err.Error())
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": err.Error(),
		})
		return
	}

	log.Info("PDF generated",
		zap.Int("bytes", len(res.PDF)),
		zap.Duration("duration", elapsed),
	)

	h := c.Writer.Header()
	h.Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	h.Set("Content-Length", strconv.Itoa(len(res.PDF)))
	h.Set("X-Generation-Time", strconv.FormatInt(elapsed.Milliseconds(), 10)+"ms")
	c.Data(http.StatusOK, res.ContentType, res.PDF)
}

func handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":              "Not Found",
		"message":            fmt.Sprintf("Endpoint %s %s not found", c.Request.Method, c.Request.URL.Path),
		"availableEndpoints": availableEndpoints,
	})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":   "Bad Request",
		"message": message,
	})
}

// sanitizeFilename keeps the base name and drops quotes and control
// characters so the value is safe inside Content-Disposition. Empty results
// fall back to the renderer default.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r == '"' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
