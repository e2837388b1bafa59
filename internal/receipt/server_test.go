package receipt

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

// multipartUpload builds a multipart body with a single file field
func multipartUpload(field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := writer.CreatePart(header)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())

	return body, writer.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		client      *mockClient
		db          *mockDB
		storage     *mockStorage
		service     *Service
		auth        BasicAuth
		server      *Server
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		client = &mockClient{
			response: `{"text": "MARKET\nMilk 3.79", "items": [{"id": "item-1", "name": "Milk", "price": 3.79}]}`,
		}
		db = newMockDB()
		storage = newMockStorage()
		pipeline := NewPipeline(client, Config{})
		service = NewServiceWithDeps(pipeline, client, db, storage,
			&fixedIDGenerator{id: "fixed-id"},
			&fixedTimeSource{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)},
		)
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("POST /api/process-receipt", func() {
		When("a valid image is uploaded", func() {
			var resp *http.Response

			JustBeforeEach(func() {
				body, contentType := multipartUpload("image", "receipt.jpg", "image/jpeg", []byte("fake image"))
				var err error
				resp, err = http.Post(ghttpServer.URL()+"/api/process-receipt", contentType, body)
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return status Created", func() {
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			})

			It("should return the extraction result", func() {
				defer resp.Body.Close()
				var result extractionResponse
				Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
				Expect(result.ID).To(Equal("fixed-id"))
				Expect(result.Method).To(Equal(MethodPrimary))
				Expect(result.Items).To(HaveLen(1))
				Expect(result.Items[0].Name).To(Equal("Milk"))
			})

			It("should persist the record", func() {
				resp.Body.Close()
				Expect(db.records).To(HaveKey("fixed-id"))
			})
		})

		When("no file is provided", func() {
			It("should return a JSON error with status Bad Request", func() {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				Expect(writer.Close()).To(Succeed())

				resp, err := http.Post(ghttpServer.URL()+"/api/process-receipt", writer.FormDataContentType(), body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var payload map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
				Expect(payload["error"]).To(Equal("No image provided"))
			})
		})

		When("the upload is not an image", func() {
			It("should return status Bad Request", func() {
				body, contentType := multipartUpload("image", "notes.txt", "text/plain", []byte("hello"))
				resp, err := http.Post(ghttpServer.URL()+"/api/process-receipt", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the payload decodes with zero items", func() {
			BeforeEach(func() {
				client.response = `{"text": "blurry", "items": []}`
			})

			It("should return the NoItemsFound message", func() {
				body, contentType := multipartUpload("image", "receipt.jpg", "image/jpeg", []byte("fake image"))
				resp, err := http.Post(ghttpServer.URL()+"/api/process-receipt", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var payload map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
				Expect(payload["error"]).To(ContainSubstring("No items found"))
			})
		})

		When("the model is unavailable", func() {
			BeforeEach(func() {
				client.extractErr = errors.New("connection refused")
			})

			It("should succeed with sample-fallback data", func() {
				body, contentType := multipartUpload("image", "receipt.jpg", "image/jpeg", []byte("fake image"))
				resp, err := http.Post(ghttpServer.URL()+"/api/process-receipt", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
				var result extractionResponse
				Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
				Expect(result.Method).To(Equal(MethodSampleFallback))
				Expect(result.Items).NotTo(BeEmpty())
			})
		})
	})

	Describe("POST /api/elaborate-item", func() {
		When("the request is well-formed", func() {
			BeforeEach(func() {
				client.elaboration = "This is 2% reduced-fat milk."
			})

			It("should return the model's elaboration", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/elaborate-item", "application/json",
					strings.NewReader(`{"itemName": "MILK 2%", "itemPrice": 3.79}`))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var payload map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
				Expect(payload["elaboration"]).To(Equal("This is 2% reduced-fat milk."))
			})
		})

		When("the model call fails", func() {
			BeforeEach(func() {
				client.elaborateErr = errors.New("quota exceeded")
			})

			It("should still return OK with the fallback string", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/elaborate-item", "application/json",
					strings.NewReader(`{"itemName": "ORGS"}`))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var payload map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
				Expect(payload["elaboration"]).To(Equal(fallbackElaboration))
			})
		})

		When("the item name is missing", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/elaborate-item", "application/json",
					strings.NewReader(`{"itemPrice": 3.79}`))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("POST /api/split", func() {
		When("the request is well-formed", func() {
			It("should return per-person totals", func() {
				reqBody := `{
					"items": [{"id": "item-1", "name": "Pizza", "price": 10.00, "assignedTo": ["p1", "p2"]}],
					"people": [{"id": "p1", "name": "Alice"}, {"id": "p2", "name": "Bob"}]
				}`
				resp, err := http.Post(ghttpServer.URL()+"/api/split", "application/json", strings.NewReader(reqBody))
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var payload map[string][]SplitResult
				Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
				Expect(payload["results"]).To(HaveLen(2))
				Expect(payload["results"][0].Total).To(Equal(5.00))
				Expect(payload["results"][1].Total).To(Equal(5.00))
			})
		})

		When("no people are given", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/split", "application/json",
					strings.NewReader(`{"items": [], "people": []}`))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the body is not JSON", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Post(ghttpServer.URL()+"/api/split", "application/json",
					strings.NewReader(`not json`))
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("GET /api/receipts", func() {
		When("records exist", func() {
			BeforeEach(func() {
				db.records["rec-1"] = &Record{ID: "rec-1", Method: MethodPrimary}
			})

			It("should list them", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var records []*Record
				Expect(json.NewDecoder(resp.Body).Decode(&records)).To(Succeed())
				Expect(records).To(HaveLen(1))
				Expect(records[0].ID).To(Equal("rec-1"))
			})
		})
	})

	Describe("GET /api/receipts/{id}", func() {
		When("the record does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts/missing")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("DELETE /api/receipts/{id}", func() {
		BeforeEach(func() {
			db.records["rec-1"] = &Record{ID: "rec-1", Filename: "rec-1_receipt.jpg"}
			storage.files["rec-1_receipt.jpg"] = []byte("data")
		})

		It("should delete the record", func() {
			req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/receipts/rec-1", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.records).To(BeEmpty())
		})
	})

	Describe("GET /metrics", func() {
		It("should expose Prometheus metrics", func() {
			resp, err := http.Get(ghttpServer.URL() + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("go_goroutines"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "user", Password: "pass"}
			setupServer()
		})

		When("no credentials are sent", func() {
			It("should return status Unauthorized", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/receipts")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})

		When("valid credentials are sent", func() {
			It("should serve the request", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/receipts", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("user:pass")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})
	})
})
