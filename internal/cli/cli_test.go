package cli_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/http/api"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/adapters/repository/repositorytest"
	service "github.com/BehramKo-WistyApp/seattle-energy-api/internal/app"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/cli"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/apperr"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/building"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline"
	"github.com/BehramKo-WistyApp/seattle-energy-api/internal/domain/pipeline/pipelinetest"
	. "github.com/smartystreets/goconvey/convey"
)

// execute runs energyctl with args and stdin, returning stdout.
func execute(stdin string, args ...string) (string, error) {
	cmd := cli.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type item struct {
	Index  int              `json:"index"`
	Status string           `json:"status"`
	Result *pipeline.Result `json:"result"`
	Error  *apperr.Detail   `json:"error"`
}

func decodeItems(out string) []item {
	var items []item
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var it item
		if err := json.Unmarshal(sc.Bytes(), &it); err != nil {
			panic(err)
		}
		items = append(items, it)
	}
	return items
}

func TestPredictCommand(t *testing.T) {
	Convey("Given an artifact directory", t, func() {
		dir := repositorytest.Dir(t)

		Convey("When one building is piped on stdin", func() {
			body, _ := json.Marshal(pipelinetest.Input())
			out, err := execute(string(body), "predict", "--artifacts", dir)

			Convey("Then one result is printed", func() {
				So(err, ShouldBeNil)
				items := decodeItems(out)
				So(items, ShouldHaveLength, 1)
				So(items[0].Status, ShouldEqual, pipeline.StatusSuccess)
				So(items[0].Result.Prediction.ConsumptionKBTU, ShouldEqual, 500000.0)
				So(items[0].Result.RequestID, ShouldEqual, "cli-0")
			})
		})

		Convey("When a file holds a mixed array", func() {
			bad := pipelinetest.Input()
			bad.NumberofFloors = 0
			body, _ := json.Marshal([]building.Input{pipelinetest.Input(), bad})
			path := filepath.Join(t.TempDir(), "buildings.json")
			So(os.WriteFile(path, body, 0o600), ShouldBeNil)

			out, err := execute("", "predict", "-a", dir, "-i", path)

			Convey("Then failures are reported inline", func() {
				So(err, ShouldBeNil)
				items := decodeItems(out)
				So(items, ShouldHaveLength, 2)
				So(items[1].Status, ShouldEqual, apperr.StatusValidation)
				So(items[1].Error.Field, ShouldEqual, building.FieldFloors)
			})
		})

		Convey("When the reference year is overridden", func() {
			body, _ := json.Marshal(pipelinetest.Input())
			out, err := execute(string(body), "predict", "-a", dir, "--reference-year", "2020")

			So(err, ShouldBeNil)
			So(decodeItems(out)[0].Result.BuildingInfo.AgeYears, ShouldEqual, 30)
		})

		Convey("When stdin is not JSON", func() {
			_, err := execute("nope", "predict", "-a", dir)
			So(err, ShouldNotBeNil)
		})

		Convey("When the artifact directory is empty", func() {
			body, _ := json.Marshal(pipelinetest.Input())
			_, err := execute(string(body), "predict", "-a", t.TempDir())
			So(apperr.Kind(err), ShouldEqual, apperr.KindConfiguration)
		})
	})
}

func TestCheckCommand(t *testing.T) {
	Convey("Given an artifact directory", t, func() {
		Convey("When it is consistent", func() {
			out, err := execute("", "check", "--artifacts", repositorytest.Dir(t))

			Convey("Then the model is summarised", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "ok       energy-consumption "+repositorytest.Version+" (linear)")
				So(out, ShouldContainSubstring, "encoded  14 columns")
				So(out, ShouldContainSubstring, "width    36 features")
			})
		})

		Convey("When a file is missing", func() {
			dir := repositorytest.Dir(t)
			So(os.Remove(filepath.Join(dir, "numeric_scaler.json")), ShouldBeNil)

			_, err := execute("", "check", "--artifacts", dir)

			So(apperr.Kind(err), ShouldEqual, apperr.KindConfiguration)
		})
	})
}

func TestLoadgenCommand(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := service.New(service.WithArtifactDir(repositorytest.Dir(t)), service.WithWorkerCount(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		out, err := execute("", "loadgen", "--url", srv.URL, "-n", "20", "-w", "3")

		So(err, ShouldBeNil)
		So(out, ShouldContainSubstring, "submitted 20, successful 20, rejected 0, failed 0, violations 0")
	})
}

func TestRootCommand(t *testing.T) {
	Convey("Given the root command", t, func() {
		out, err := execute("")

		Convey("Then it prints help listing the subcommands", func() {
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "predict")
			So(out, ShouldContainSubstring, "check")
			So(out, ShouldContainSubstring, "loadgen")
		})
	})
}
